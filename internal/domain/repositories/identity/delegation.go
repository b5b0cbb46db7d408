package identity

import (
	"context"

	models "sharecast/internal/domain/models/identity"
)

// ExecutorLinkRepository defines data access for executor delegations.
type ExecutorLinkRepository interface {
	// ListForPrincipal retrieves all executor links held by the principal,
	// most recently granted first, ties broken by partition id ascending.
	// The ordering is part of the contract: the resolver picks the first.
	ListForPrincipal(ctx context.Context, principalID string) ([]models.ExecutorLink, error)

	// Exists reports whether the principal holds an executor link on the partition
	Exists(ctx context.Context, principalID, partitionID string) (bool, error)

	// CreateIfAbsent inserts the link unless the (principal, partition) pair
	// already has one. An existing row is success, not an error.
	CreateIfAbsent(ctx context.Context, link *models.ExecutorLink) error
}

// ListenerLinkRepository defines data access for listener delegations.
type ListenerLinkRepository interface {
	// Get retrieves the listener link for a (principal, partition) pair
	Get(ctx context.Context, principalID, partitionID string) (*models.ListenerLink, error)

	// CreateIfAbsent inserts the link unless the (principal, partition) pair
	// already has one. An existing row is success, not an error.
	CreateIfAbsent(ctx context.Context, link *models.ListenerLink) error

	// SetAccess toggles the has_access flag without deleting the link
	SetAccess(ctx context.Context, principalID, partitionID string, hasAccess bool) error
}

// RoleAssignmentRepository defines data access for platform role assignments.
type RoleAssignmentRepository interface {
	// HasRole reports whether the principal holds the given role
	HasRole(ctx context.Context, principalID string, role models.Role) (bool, error)

	// ListRoles retrieves all roles held by the principal
	ListRoles(ctx context.Context, principalID string) (models.RoleSet, error)

	// CreateIfAbsent assigns the role unless the principal already holds it.
	// An existing row is success, not an error.
	CreateIfAbsent(ctx context.Context, assignment *models.RoleAssignment) error
}
