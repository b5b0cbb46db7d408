package identity

import (
	"context"
	"time"

	models "sharecast/internal/domain/models/identity"
)

// InvitationRepository defines data access for invitations.
type InvitationRepository interface {
	// GetByID retrieves an invitation by id
	GetByID(ctx context.Context, id string) (*models.Invitation, error)

	// GetByToken retrieves an invitation by its acceptance token
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)

	// Create creates a new pending invitation
	Create(ctx context.Context, invitation *models.Invitation) error

	// MarkAccepted transitions a pending invitation to accepted with the
	// given timestamp. Returns domain.ErrNotFound if the invitation is no
	// longer pending (the transition is guarded, not blind).
	MarkAccepted(ctx context.Context, id string, acceptedAt time.Time) error

	// MarkRevoked transitions a pending invitation to revoked
	MarkRevoked(ctx context.Context, id string) error
}
