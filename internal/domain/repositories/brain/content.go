package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// ContentRepository defines data access operations for saved content.
// List methods return newest first.
type ContentRepository interface {
	// Create inserts content, assigning ID and timestamps
	Create(ctx context.Context, content *brain.Content) error

	// GetByID retrieves content owned by userID
	GetByID(ctx context.Context, id, userID string) (*brain.Content, error)

	// ListByUser returns all content of a user
	ListByUser(ctx context.Context, userID string) ([]brain.Content, error)

	// ListByCollection returns content filed directly in collectionID (nil = uncategorized)
	ListByCollection(ctx context.Context, userID string, collectionID *string) ([]brain.Content, error)

	// ListByCollections returns content filed in any of the collections
	ListByCollections(ctx context.Context, userID string, collectionIDs []string) ([]brain.Content, error)

	// Update persists title, link, description, collection, tags and updated_at
	Update(ctx context.Context, content *brain.Content) error

	// Delete removes content
	Delete(ctx context.Context, id, userID string) error

	// ClearCollection uncategorizes all content filed in collectionID
	ClearCollection(ctx context.Context, userID, collectionID string) (int64, error)

	// DeleteByCollections removes all content filed in any of the collections
	DeleteByCollections(ctx context.Context, userID string, collectionIDs []string) (int64, error)

	// CountByCollection returns collection ID -> number of content items filed in it
	CountByCollection(ctx context.Context, userID string) (map[string]int, error)

	// CountByType returns content type -> number of items
	CountByType(ctx context.Context, userID string) (map[brain.ContentType]int, error)

	// Search returns content matching the filter, newest first
	Search(ctx context.Context, filter *brain.SearchFilter) ([]brain.Content, error)
}
