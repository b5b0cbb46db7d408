package identity

import "time"

// InvitationStatus is the lifecycle state of an invitation. The machine is
// monotonic: PENDING is the only non-terminal state.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is an owner's offer to grant a role on their partition to the
// holder of the token. It is consumed exactly once by a successful
// acceptance.
type Invitation struct {
	ID           string           `json:"id"`
	Token        string           `json:"token"`
	InviteeEmail string           `json:"invitee_email"`
	PartitionID  string           `json:"partition_id"`
	Role         Role             `json:"role"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// IsExpired reports whether the invitation's deadline has passed. A pending
// invitation past its deadline is treated as expired even if the stored
// status has not been updated yet.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
