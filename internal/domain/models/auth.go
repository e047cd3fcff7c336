package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the bearer token payload accepted by the access gate.
// Tokens from the hosted identity provider carry Role and Email; tokens
// signed with the shared secret only need a subject.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"` // "authenticated" or "anon"
	SessionID   string `json:"session_id,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}
