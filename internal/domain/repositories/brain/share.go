package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// ShareRepository persists public brain settings
type ShareRepository interface {
	// GetByUserID returns the share record of a user
	GetByUserID(ctx context.Context, userID string) (*brain.BrainShare, error)

	// GetByToken resolves a share token
	GetByToken(ctx context.Context, token string) (*brain.BrainShare, error)

	// Upsert creates or updates the share record keyed by user
	Upsert(ctx context.Context, share *brain.BrainShare) error
}
