package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	"sharecast/internal/repository/postgres"
)

// PostgresSharerProfileRepository implements the SharerProfileRepository interface
type PostgresSharerProfileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewSharerProfileRepository creates a new sharer profile repository
func NewSharerProfileRepository(config *postgres.RepositoryConfig) identityRepo.SharerProfileRepository {
	return &PostgresSharerProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByOwner retrieves the sharer profile owned by the principal
func (r *PostgresSharerProfileRepository) GetByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error) {
	query := fmt.Sprintf(`
		SELECT partition_id, owner_principal_id, subscription_active, created_at, updated_at
		FROM %s
		WHERE owner_principal_id = $1
	`, r.tables.SharerProfiles)

	var profile models.SharerProfile
	err := r.pool.QueryRow(ctx, query, principalID).Scan(
		&profile.PartitionID,
		&profile.OwnerPrincipalID,
		&profile.SubscriptionActive,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("sharer profile for %s: %w", principalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get sharer profile: %w", err)
	}

	return &profile, nil
}

// Owns reports whether the principal owns the given partition
func (r *PostgresSharerProfileRepository) Owns(ctx context.Context, principalID, partitionID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE owner_principal_id = $1 AND partition_id = $2
		)
	`, r.tables.SharerProfiles)

	var owns bool
	if err := r.pool.QueryRow(ctx, query, principalID, partitionID).Scan(&owns); err != nil {
		return false, fmt.Errorf("check partition ownership: %w", err)
	}

	return owns, nil
}

// Create creates a new sharer profile
func (r *PostgresSharerProfileRepository) Create(ctx context.Context, profile *models.SharerProfile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (partition_id, owner_principal_id, subscription_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.SharerProfiles)

	_, err := r.pool.Exec(ctx, query,
		profile.PartitionID,
		profile.OwnerPrincipalID,
		profile.SubscriptionActive,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// At most one partition per principal
			return &domain.ConflictError{
				Message:      fmt.Sprintf("principal %s already owns a partition", profile.OwnerPrincipalID),
				ResourceType: "sharer_profile",
				ResourceID:   profile.PartitionID,
			}
		}
		return fmt.Errorf("create sharer profile: %w", err)
	}

	return nil
}
