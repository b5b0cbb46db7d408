package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	"sharecast/internal/repository/postgres"
)

// PostgresInvitationRepository implements the InvitationRepository interface
type PostgresInvitationRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(config *postgres.RepositoryConfig) identityRepo.InvitationRepository {
	return &PostgresInvitationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const invitationColumns = "id, token, invitee_email, partition_id, role, status, expires_at, accepted_at, created_at"

func (r *PostgresInvitationRepository) scanInvitation(row interface{ Scan(...interface{}) error }) (*models.Invitation, error) {
	var inv models.Invitation
	var role, status string
	err := row.Scan(
		&inv.ID,
		&inv.Token,
		&inv.InviteeEmail,
		&inv.PartitionID,
		&role,
		&status,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Role = models.Role(role)
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}

// GetByID retrieves an invitation by id
func (r *PostgresInvitationRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, invitationColumns, r.tables.Invitations)

	inv, err := r.scanInvitation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("invitation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	return inv, nil
}

// GetByToken retrieves an invitation by its acceptance token
func (r *PostgresInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE token = $1
	`, invitationColumns, r.tables.Invitations)

	inv, err := r.scanInvitation(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("invitation token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}

	return inv, nil
}

// Create creates a new pending invitation
func (r *PostgresInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Invitations, invitationColumns)

	_, err := r.pool.Exec(ctx, query,
		invitation.ID,
		invitation.Token,
		invitation.InviteeEmail,
		invitation.PartitionID,
		string(invitation.Role),
		string(invitation.Status),
		invitation.ExpiresAt,
		invitation.AcceptedAt,
		invitation.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("invitation %s already exists", invitation.ID),
				ResourceType: "invitation",
				ResourceID:   invitation.ID,
			}
		}
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

// MarkAccepted transitions a pending invitation to accepted. The status
// guard in the WHERE clause makes the transition race-safe: the second of
// two concurrent acceptances sees zero rows affected.
func (r *PostgresInvitationRepository) MarkAccepted(ctx context.Context, id string, acceptedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, accepted_at = $3
		WHERE id = $1 AND status = $4
	`, r.tables.Invitations)

	tag, err := r.pool.Exec(ctx, query, id,
		string(models.InvitationAccepted),
		acceptedAt,
		string(models.InvitationPending),
	)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invitation %s is not pending: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkRevoked transitions a pending invitation to revoked
func (r *PostgresInvitationRepository) MarkRevoked(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2
		WHERE id = $1 AND status = $3
	`, r.tables.Invitations)

	tag, err := r.pool.Exec(ctx, query, id,
		string(models.InvitationRevoked),
		string(models.InvitationPending),
	)
	if err != nil {
		return fmt.Errorf("mark invitation revoked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invitation %s is not pending: %w", id, domain.ErrNotFound)
	}

	return nil
}
