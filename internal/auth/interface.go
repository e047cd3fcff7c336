package auth

import "subbrain/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The auth middleware stays agnostic to how tokens are signed.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
