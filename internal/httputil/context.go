package httputil

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = iota

// ContextWithUserID returns ctx carrying the authenticated user
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext reports the authenticated user, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a shallow copy of r whose context carries userID
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// GetUserID returns the authenticated user or ""
func GetUserID(r *http.Request) string {
	userID, _ := UserIDFromContext(r.Context())
	return userID
}
