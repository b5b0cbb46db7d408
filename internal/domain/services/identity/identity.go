package identity

import (
	"context"

	models "sharecast/internal/domain/models/identity"
	"sharecast/internal/routes"
)

// AcceptanceReason is the typed denial reason returned to the caller of
// AcceptInvitation. Infrastructure failures never appear here; only
// validation-level denials do.
type AcceptanceReason string

const (
	ReasonEmailMismatch      AcceptanceReason = "EMAIL_MISMATCH"
	ReasonInvitationAccepted AcceptanceReason = "INVITATION_ACCEPTED"
	ReasonInvitationRevoked  AcceptanceReason = "INVITATION_REVOKED"
	ReasonInvitationExpired  AcceptanceReason = "INVITATION_EXPIRED"
)

// AcceptanceResult is the outcome of an invitation acceptance attempt.
type AcceptanceResult struct {
	Accepted    bool             `json:"accepted"`
	Reason      AcceptanceReason `json:"reason,omitempty"`
	PartitionID string           `json:"partition_id,omitempty"`
	Role        models.Role      `json:"role,omitempty"`
}

// CreateInvitationRequest represents an owner's request to invite a
// principal onto their partition.
type CreateInvitationRequest struct {
	PartitionID  string      `json:"partition_id"`
	InviteeEmail string      `json:"invitee_email"`
	Role         models.Role `json:"role"`
}

// PartitionResolver computes the effective partition a principal acts on.
type PartitionResolver interface {
	// ResolveEffectivePartition returns the partition id the principal is
	// permitted to act on, and false if no partition could be established
	// (the caller must route to onboarding, never to a default partition).
	// A supplied candidate id is verified first and short-circuits the
	// cascade when it passes.
	ResolveEffectivePartition(ctx context.Context, principal models.Principal, candidatePartitionID string) (string, bool)
}

// AccessGate answers the binary access question for a principal and a
// partition. It fails closed: any data-source error counts as deny.
type AccessGate interface {
	HasAccess(ctx context.Context, principal models.Principal, partitionID string) bool
}

// InvitationProvisioner converts accepted invitations into durable
// delegation rows and role assignments.
type InvitationProvisioner interface {
	// AcceptInvitation runs the acceptance state machine for the invitation.
	// The error return is reserved for infrastructure failures that blocked
	// the primary grant; validation denials come back in the result.
	AcceptInvitation(ctx context.Context, invitationID string, principal models.Principal) (*AcceptanceResult, error)
}

// RoleRouter maps held roles to a single landing route.
type RoleRouter interface {
	// RouteFor picks the landing route for a set of held roles using fixed
	// priority (admin > sharer > executor > listener); principals with no
	// roles land on onboarding
	RouteFor(roleSet models.RoleSet) routes.Route

	// RouteForPrincipal loads the principal's roles and routes them
	RouteForPrincipal(ctx context.Context, principal models.Principal) (routes.Route, error)
}

// DelegationService manages existing delegation rows on a partition.
type DelegationService interface {
	// SetListenerAccess toggles a listener's access on a partition the
	// acting principal controls. The link row is kept so notification
	// preferences survive a later re-grant.
	SetListenerAccess(ctx context.Context, principal models.Principal, partitionID, listenerID string, hasAccess bool) error
}

// InvitationService is the owner-side invitation lifecycle.
type InvitationService interface {
	// CreateInvitation creates a pending invitation for a partition the
	// acting principal controls
	CreateInvitation(ctx context.Context, principal models.Principal, req *CreateInvitationRequest) (*models.Invitation, error)

	// GetInvitation retrieves an invitation by id, requiring the acceptance
	// token to match (the acceptance page is pre-auth)
	GetInvitation(ctx context.Context, id, token string) (*models.Invitation, error)

	// RevokeInvitation revokes a pending invitation on a partition the
	// acting principal controls
	RevokeInvitation(ctx context.Context, principal models.Principal, id string) error
}
