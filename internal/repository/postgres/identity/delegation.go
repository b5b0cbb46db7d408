package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	"sharecast/internal/repository/postgres"
)

// PostgresExecutorLinkRepository implements the ExecutorLinkRepository interface
type PostgresExecutorLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewExecutorLinkRepository creates a new executor link repository
func NewExecutorLinkRepository(config *postgres.RepositoryConfig) identityRepo.ExecutorLinkRepository {
	return &PostgresExecutorLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListForPrincipal retrieves all executor links held by the principal.
// Ordering (most recent grant first, partition id breaking ties) is part of
// the repository contract; the resolver picks the first row.
func (r *PostgresExecutorLinkRepository) ListForPrincipal(ctx context.Context, principalID string) ([]models.ExecutorLink, error) {
	query := fmt.Sprintf(`
		SELECT principal_id, partition_id, granted_at
		FROM %s
		WHERE principal_id = $1
		ORDER BY granted_at DESC, partition_id ASC
	`, r.tables.ExecutorLinks)

	rows, err := r.pool.Query(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("list executor links: %w", err)
	}
	defer rows.Close()

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExecutorLink, error) {
		var link models.ExecutorLink
		err := row.Scan(&link.PrincipalID, &link.PartitionID, &link.GrantedAt)
		return link, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan executor links: %w", err)
	}

	return links, nil
}

// Exists reports whether the principal holds an executor link on the partition
func (r *PostgresExecutorLinkRepository) Exists(ctx context.Context, principalID, partitionID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE principal_id = $1 AND partition_id = $2
		)
	`, r.tables.ExecutorLinks)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, principalID, partitionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check executor link: %w", err)
	}

	return exists, nil
}

// CreateIfAbsent inserts the link unless the (principal, partition) pair
// already has one
func (r *PostgresExecutorLinkRepository) CreateIfAbsent(ctx context.Context, link *models.ExecutorLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (principal_id, partition_id, granted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal_id, partition_id) DO NOTHING
	`, r.tables.ExecutorLinks)

	_, err := r.pool.Exec(ctx, query, link.PrincipalID, link.PartitionID, link.GrantedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return nil
		}
		return fmt.Errorf("create executor link: %w", err)
	}

	return nil
}

// PostgresListenerLinkRepository implements the ListenerLinkRepository interface
type PostgresListenerLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewListenerLinkRepository creates a new listener link repository
func NewListenerLinkRepository(config *postgres.RepositoryConfig) identityRepo.ListenerLinkRepository {
	return &PostgresListenerLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the listener link for a (principal, partition) pair
func (r *PostgresListenerLinkRepository) Get(ctx context.Context, principalID, partitionID string) (*models.ListenerLink, error) {
	query := fmt.Sprintf(`
		SELECT principal_id, partition_id, has_access, notifications_enabled, granted_at
		FROM %s
		WHERE principal_id = $1 AND partition_id = $2
	`, r.tables.ListenerLinks)

	var link models.ListenerLink
	err := r.pool.QueryRow(ctx, query, principalID, partitionID).Scan(
		&link.PrincipalID,
		&link.PartitionID,
		&link.HasAccess,
		&link.NotificationsEnabled,
		&link.GrantedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("listener link (%s, %s): %w", principalID, partitionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get listener link: %w", err)
	}

	return &link, nil
}

// CreateIfAbsent inserts the link unless the (principal, partition) pair
// already has one
func (r *PostgresListenerLinkRepository) CreateIfAbsent(ctx context.Context, link *models.ListenerLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (principal_id, partition_id, has_access, notifications_enabled, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (principal_id, partition_id) DO NOTHING
	`, r.tables.ListenerLinks)

	_, err := r.pool.Exec(ctx, query,
		link.PrincipalID,
		link.PartitionID,
		link.HasAccess,
		link.NotificationsEnabled,
		link.GrantedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return nil
		}
		return fmt.Errorf("create listener link: %w", err)
	}

	return nil
}

// SetAccess toggles the has_access flag without deleting the link
func (r *PostgresListenerLinkRepository) SetAccess(ctx context.Context, principalID, partitionID string, hasAccess bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET has_access = $3
		WHERE principal_id = $1 AND partition_id = $2
	`, r.tables.ListenerLinks)

	tag, err := r.pool.Exec(ctx, query, principalID, partitionID, hasAccess)
	if err != nil {
		return fmt.Errorf("set listener access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listener link (%s, %s): %w", principalID, partitionID, domain.ErrNotFound)
	}

	return nil
}
