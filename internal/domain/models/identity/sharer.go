package identity

import "time"

// Profile is the base account record every principal gets, regardless of
// role. Delegation rows and role assignments hang off it.
type Profile struct {
	PrincipalID string    `json:"principal_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SharerProfile is the owner record for a content partition. Its ID is the
// partition id: the partition and the sharer profile are one-to-one, and a
// principal owns at most one partition.
type SharerProfile struct {
	PartitionID        string    `json:"partition_id"`
	OwnerPrincipalID   string    `json:"owner_principal_id"`
	SubscriptionActive bool      `json:"subscription_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
