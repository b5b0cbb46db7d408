package middleware

import (
	"net/http"
	"strings"

	"sharecast/internal/auth"
	"sharecast/internal/httputil"
)

// Auth verifies the bearer token on every request and threads the resolved
// principal through the request context. There is no session-level "active
// role" state; each request carries its own identity.
func Auth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			r = httputil.WithPrincipal(r, claims.Principal())
			next.ServeHTTP(w, r)
		})
	}
}

// isPublic reports whether the request needs no session. Health checks are
// open; the invitation lookup backs the pre-auth acceptance page and is
// guarded by the invitation token instead.
func isPublic(r *http.Request) bool {
	if r.URL.Path == "/health" {
		return true
	}
	if r.Method == http.MethodGet &&
		strings.HasPrefix(r.URL.Path, "/api/invitations/") &&
		r.URL.Query().Get("token") != "" {
		return true
	}
	return false
}
