// Package restapi implements the privileged authority-store paths on top of
// the platform's REST data API. Reads issued here are immune to row-level
// restrictions; they exist to tolerate standard-path outages, not to widen
// who is authorized. Writes issued here are the stored-procedure half of the
// two-path provisioning strategy.
package restapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"sharecast/internal/auth"
	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	"sharecast/internal/repository/postgres"
)

// Store exposes privileged reads and stored-procedure writes.
type Store struct {
	client *auth.ServiceClient
	tables *postgres.TableNames
}

// NewStore creates a privileged store over the service-role client. Table
// names carry the same environment prefix the pgx layer uses.
func NewStore(client *auth.ServiceClient, tables *postgres.TableNames) *Store {
	return &Store{
		client: client,
		tables: tables,
	}
}

type sharerProfileRow struct {
	PartitionID        string    `json:"partition_id"`
	OwnerPrincipalID   string    `json:"owner_principal_id"`
	SubscriptionActive bool      `json:"subscription_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type executorLinkRow struct {
	PrincipalID string    `json:"principal_id"`
	PartitionID string    `json:"partition_id"`
	GrantedAt   time.Time `json:"granted_at"`
}

// SharerProfileByOwner retrieves the sharer profile owned by the principal
// through the privileged read path.
func (s *Store) SharerProfileByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error) {
	query := url.Values{}
	query.Set("select", "partition_id,owner_principal_id,subscription_active,created_at,updated_at")
	query.Set("owner_principal_id", "eq."+principalID)
	query.Set("limit", "1")

	var rows []sharerProfileRow
	if err := s.client.SelectRows(ctx, s.tables.SharerProfiles, query, &rows); err != nil {
		return nil, fmt.Errorf("bypass sharer profile lookup: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sharer profile for %s: %w", principalID, domain.ErrNotFound)
	}

	row := rows[0]
	return &models.SharerProfile{
		PartitionID:        row.PartitionID,
		OwnerPrincipalID:   row.OwnerPrincipalID,
		SubscriptionActive: row.SubscriptionActive,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

// ExecutorLinksFor retrieves the principal's executor links via the
// privileged delegation-lookup procedure. The procedure returns rows in the
// same order the standard path uses (most recent grant first, partition id
// breaking ties).
func (s *Store) ExecutorLinksFor(ctx context.Context, principalID string) ([]models.ExecutorLink, error) {
	var rows []executorLinkRow
	err := s.client.CallProcedure(ctx, "executor_links_for", map[string]interface{}{
		"p_principal_id": principalID,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("executor links procedure: %w", err)
	}

	links := make([]models.ExecutorLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, models.ExecutorLink{
			PrincipalID: row.PrincipalID,
			PartitionID: row.PartitionID,
			GrantedAt:   row.GrantedAt,
		})
	}

	return links, nil
}

// EnsureProfile creates the base profile through the provisioning procedure.
// The procedure is a no-op when the profile already exists.
func (s *Store) EnsureProfile(ctx context.Context, profile *models.Profile) error {
	return s.client.CallProcedure(ctx, "ensure_profile", map[string]interface{}{
		"p_principal_id": profile.PrincipalID,
		"p_email":        profile.Email,
		"p_display_name": profile.DisplayName,
	}, nil)
}

// AssignRole assigns a platform role through the provisioning procedure.
// No-op when the principal already holds the role.
func (s *Store) AssignRole(ctx context.Context, principalID string, role models.Role) error {
	return s.client.CallProcedure(ctx, "assign_role", map[string]interface{}{
		"p_principal_id": principalID,
		"p_role":         string(role),
	}, nil)
}

// GrantExecutorLink creates an executor delegation through the provisioning
// procedure. No-op when the (principal, partition) link already exists.
func (s *Store) GrantExecutorLink(ctx context.Context, principalID, partitionID string) error {
	return s.client.CallProcedure(ctx, "grant_executor_link", map[string]interface{}{
		"p_principal_id": principalID,
		"p_partition_id": partitionID,
	}, nil)
}

// GrantListenerLink creates a listener delegation through the provisioning
// procedure. No-op when the (principal, partition) link already exists.
func (s *Store) GrantListenerLink(ctx context.Context, principalID, partitionID string) error {
	return s.client.CallProcedure(ctx, "grant_listener_link", map[string]interface{}{
		"p_principal_id": principalID,
		"p_partition_id": partitionID,
	}, nil)
}

// AcceptInvitation transitions the invitation to accepted through the
// provisioning procedure. The procedure guards on pending status.
func (s *Store) AcceptInvitation(ctx context.Context, id string, acceptedAt time.Time) error {
	return s.client.CallProcedure(ctx, "accept_invitation", map[string]interface{}{
		"p_invitation_id": id,
		"p_accepted_at":   acceptedAt.UTC().Format(time.RFC3339Nano),
	}, nil)
}
