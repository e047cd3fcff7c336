package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// CollectionService handles collection business logic
type CollectionService interface {
	// ListCollections returns the user's collections with live content counts, newest first
	ListCollections(ctx context.Context, userID string) ([]brain.Collection, error)

	// RefreshCollections is ListCollections after reloading the user's cached hierarchy
	RefreshCollections(ctx context.Context, userID string) ([]brain.Collection, error)

	// GetCollection returns one collection with its content count
	GetCollection(ctx context.Context, userID, id string) (*brain.Collection, error)

	// CreateCollection creates a non-default collection
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*brain.Collection, error)

	// UpdateCollection applies a partial update
	UpdateCollection(ctx context.Context, userID, id string, req *UpdateCollectionRequest) (*brain.Collection, error)

	// DeleteCollection removes a collection, promoting or cascading its subtree
	DeleteCollection(ctx context.Context, userID, id string, mode brain.DeleteMode) (*brain.DeleteResult, error)

	// GetCollectionContents returns a collection and the content filed directly in it
	GetCollectionContents(ctx context.Context, userID, id string) (*brain.CollectionWithContents, error)

	// GetTree returns the user's collection forest
	GetTree(ctx context.Context, userID string) ([]*brain.CollectionTreeNode, error)
}

// CreateCollectionRequest represents a collection creation request
type CreateCollectionRequest struct {
	UserID           string  `json:"-"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Icon             string  `json:"icon,omitempty"`
	Color            string  `json:"color,omitempty"`
	ParentCollection *string `json:"parent_collection,omitempty"` // null or absent = root
	IsDefault        bool    `json:"-"`                           // only set by seeding
}

// UpdateCollectionRequest represents a partial collection update.
// Nil fields are left untouched.
type UpdateCollectionRequest struct {
	Name             *string
	Description      *string
	Icon             *string
	Color            *string
	ParentCollection brain.OptionalRef // null = move to root
}
