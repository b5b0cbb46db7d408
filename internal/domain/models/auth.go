package models

import (
	"github.com/golang-jwt/jwt/v5"

	"sharecast/internal/domain/models/identity"
)

// SessionClaims is the JWT claims structure issued by the platform's auth
// layer. app_metadata carries the advisory role snapshot written at the end
// of the previous session; it is a hint, never an authority source.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	Role         string                 `json:"role"` // "authenticated" or "anon"
	SessionID    string                 `json:"session_id"`
	IsAnonymous  bool                   `json:"is_anonymous"`
}

// GetUserID returns the principal id from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}

// Principal converts verified claims into the request-scoped principal,
// carrying the cached role facts (if any) as an advisory hint.
func (c *SessionClaims) Principal() identity.Principal {
	return identity.Principal{
		ID:    c.Subject,
		Email: c.Email,
		Hint:  c.claimsHint(),
	}
}

// claimsHint extracts the cached role snapshot from app_metadata. Missing
// or malformed entries yield a nil hint.
func (c *SessionClaims) claimsHint() *identity.ClaimsHint {
	if len(c.AppMetadata) == 0 {
		return nil
	}

	hint := &identity.ClaimsHint{}
	found := false

	if raw, ok := c.AppMetadata["roles"].([]interface{}); ok {
		for _, entry := range raw {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if role, ok := identity.ParseRole(s); ok {
				hint.Roles = append(hint.Roles, role)
				found = true
			}
		}
	}

	if partition, ok := c.AppMetadata["sharer_partition_id"].(string); ok && partition != "" {
		hint.SharerPartitionID = partition
		found = true
	}

	// JSON numbers decode as float64
	if count, ok := c.AppMetadata["delegation_count"].(float64); ok {
		hint.DelegationCount = int(count)
		found = true
	}

	if !found {
		return nil
	}
	return hint
}
