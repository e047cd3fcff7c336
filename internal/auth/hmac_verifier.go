package auth

import (
	"errors"
	"log/slog"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier validates HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a verifier for tokens signed with secret.
func NewHMACVerifier(secret string, logger *slog.Logger) (JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	logger.Info("JWT verifier initialized", "mode", "hs256")
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates signature, expiry and subject.
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if claims.IsAnonymous || claims.Role == "anon" {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases nothing.
func (v *HMACVerifier) Close() error { return nil }

// SignHS256 issues a token for userID. Used by brainctl and tests.
func SignHS256(secret, userID string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = userID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.AccessClaims{
		RegisteredClaims: claims,
		Role:             "authenticated",
	})
	return token.SignedString([]byte(secret))
}
