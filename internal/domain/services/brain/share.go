package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// ShareService manages the public, read-only view of a user's brain
type ShareService interface {
	// GetShare returns the caller's share settings, creating a private record on first use
	GetShare(ctx context.Context, userID string) (*brain.BrainShare, error)

	// SetVisibility publishes or hides the caller's brain
	SetVisibility(ctx context.Context, userID string, public bool) (*brain.BrainShare, error)

	// GetPublicBrain resolves a share token for an anonymous visitor
	GetPublicBrain(ctx context.Context, token string) (*brain.PublicBrain, error)
}

// UpdateShareRequest is the body of a visibility change
type UpdateShareRequest struct {
	IsPublic *bool `json:"is_public"`
}
