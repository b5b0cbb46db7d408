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

// PostgresProfileRepository implements the ProfileRepository interface
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *postgres.RepositoryConfig) identityRepo.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByPrincipal retrieves a profile by principal id
func (r *PostgresProfileRepository) GetByPrincipal(ctx context.Context, principalID string) (*models.Profile, error) {
	query := fmt.Sprintf(`
		SELECT principal_id, email, display_name, created_at
		FROM %s
		WHERE principal_id = $1
	`, r.tables.Profiles)

	var profile models.Profile
	err := r.pool.QueryRow(ctx, query, principalID).Scan(
		&profile.PrincipalID,
		&profile.Email,
		&profile.DisplayName,
		&profile.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", principalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// CreateIfAbsent inserts the profile unless one already exists for the
// principal. ON CONFLICT DO NOTHING makes the write safe under concurrent
// acceptance of the same invitation.
func (r *PostgresProfileRepository) CreateIfAbsent(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (principal_id, email, display_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (principal_id) DO NOTHING
	`, r.tables.Profiles)

	_, err := r.pool.Exec(ctx, query,
		profile.PrincipalID,
		profile.Email,
		profile.DisplayName,
		profile.CreatedAt,
	)
	if err != nil {
		// A racing insert that slips past ON CONFLICT is still success
		if postgres.IsPgDuplicateError(err) {
			return nil
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}
