package httputil

import (
	"context"
	"net/http"

	"sharecast/internal/domain/models/identity"
)

// Context key type to avoid collisions
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal adds the authenticated principal to the request context
func WithPrincipal(r *http.Request, principal identity.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, principal)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the authenticated principal from the request
// context. The second return is false for unauthenticated requests.
func GetPrincipal(r *http.Request) (identity.Principal, bool) {
	principal, ok := r.Context().Value(principalKey).(identity.Principal)
	return principal, ok
}
