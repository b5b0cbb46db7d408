package identity

import "time"

// ExecutorLink grants a principal full management rights over a partition
// they do not own. Unique per (principal, partition).
type ExecutorLink struct {
	PrincipalID string    `json:"principal_id"`
	PartitionID string    `json:"partition_id"`
	GrantedAt   time.Time `json:"granted_at"`
}

// ListenerLink grants a principal read access to a partition. HasAccess can
// be switched off by the partition owner without deleting the link, which
// preserves notification preferences for a later re-grant. Unique per
// (principal, partition).
type ListenerLink struct {
	PrincipalID          string    `json:"principal_id"`
	PartitionID          string    `json:"partition_id"`
	HasAccess            bool      `json:"has_access"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	GrantedAt            time.Time `json:"granted_at"`
}

// RoleAssignment records that a principal holds a platform role. A role
// assignment existing does not imply the matching delegation row exists;
// the two are written by separate steps of invitation acceptance and can
// diverge during partial provisioning.
type RoleAssignment struct {
	PrincipalID string    `json:"principal_id"`
	Role        Role      `json:"role"`
	AssignedAt  time.Time `json:"assigned_at"`
}
