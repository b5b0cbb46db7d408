package identity

// Role is a platform-level role held by a principal. A principal may hold
// several roles at once (e.g. a sharer who is also a listener on someone
// else's partition).
type Role string

const (
	RoleSharer   Role = "sharer"
	RoleExecutor Role = "executor"
	RoleListener Role = "listener"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role string to a Role, reporting whether the
// value is one of the known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSharer, RoleExecutor, RoleListener, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// RoleSet is the set of roles a principal holds.
type RoleSet map[Role]bool

// NewRoleSet builds a RoleSet from a list of roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	return s[role]
}
