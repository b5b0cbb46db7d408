package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	"sharecast/internal/repository/postgres"
)

// PostgresRoleAssignmentRepository implements the RoleAssignmentRepository interface
type PostgresRoleAssignmentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewRoleAssignmentRepository creates a new role assignment repository
func NewRoleAssignmentRepository(config *postgres.RepositoryConfig) identityRepo.RoleAssignmentRepository {
	return &PostgresRoleAssignmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// HasRole reports whether the principal holds the given role
func (r *PostgresRoleAssignmentRepository) HasRole(ctx context.Context, principalID string, role models.Role) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE principal_id = $1 AND role = $2
		)
	`, r.tables.RoleAssignments)

	var has bool
	if err := r.pool.QueryRow(ctx, query, principalID, string(role)).Scan(&has); err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}

	return has, nil
}

// ListRoles retrieves all roles held by the principal
func (r *PostgresRoleAssignmentRepository) ListRoles(ctx context.Context, principalID string) (models.RoleSet, error) {
	query := fmt.Sprintf(`
		SELECT role FROM %s
		WHERE principal_id = $1
	`, r.tables.RoleAssignments)

	rows, err := r.pool.Query(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	set := make(models.RoleSet)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if role, ok := models.ParseRole(raw); ok {
			set[role] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	return set, nil
}

// CreateIfAbsent assigns the role unless the principal already holds it
func (r *PostgresRoleAssignmentRepository) CreateIfAbsent(ctx context.Context, assignment *models.RoleAssignment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (principal_id, role, assigned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal_id, role) DO NOTHING
	`, r.tables.RoleAssignments)

	_, err := r.pool.Exec(ctx, query,
		assignment.PrincipalID,
		string(assignment.Role),
		assignment.AssignedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return nil
		}
		return fmt.Errorf("create role assignment: %w", err)
	}

	return nil
}
