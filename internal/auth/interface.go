package auth

import "sharecast/internal/domain/models"

// TokenVerifier defines the interface for session token verification.
// This abstraction keeps the middleware agnostic to how tokens are
// validated (JWKS in production, a static verifier in tests).
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	// Should be called when the verifier is no longer needed.
	Close() error
}
