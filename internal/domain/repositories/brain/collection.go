package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// CollectionRepository defines data access operations for collections.
// Every method is scoped by owner; a collection of another user behaves as missing.
type CollectionRepository interface {
	// Create inserts a collection, assigning ID and timestamps.
	// Returns *domain.ConflictError when (user_id, name) is taken.
	Create(ctx context.Context, collection *brain.Collection) error

	// GetByID retrieves a collection owned by userID
	GetByID(ctx context.Context, id, userID string) (*brain.Collection, error)

	// GetByName retrieves a collection by its unique per-user name
	GetByName(ctx context.Context, userID, name string) (*brain.Collection, error)

	// ListByUser returns all collections of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]brain.Collection, error)

	// Update persists name, description, icon, color, parent and updated_at
	Update(ctx context.Context, collection *brain.Collection) error

	// ReparentChildren moves every direct child of parentID under newParentID (nil = root)
	ReparentChildren(ctx context.Context, userID, parentID string, newParentID *string) (int64, error)

	// DeleteMany removes the listed collections
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}
