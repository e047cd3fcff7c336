package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// ContentService handles saved content business logic
type ContentService interface {
	CreateContent(ctx context.Context, req *CreateContentRequest) (*brain.Content, error)
	GetContent(ctx context.Context, userID, id string) (*brain.Content, error)

	// ListContent returns the user's content, optionally limited to one collection
	ListContent(ctx context.Context, req *ListContentRequest) ([]brain.Content, error)

	UpdateContent(ctx context.Context, userID, id string, req *UpdateContentRequest) (*brain.Content, error)

	// MoveContent files content into a collection (nil = uncategorized)
	MoveContent(ctx context.Context, userID, id string, collectionID *string) (*brain.Content, error)

	DeleteContent(ctx context.Context, userID, id string) error

	// GetStats returns per-user content totals
	GetStats(ctx context.Context, userID string) (*brain.ContentStats, error)
}

// CreateContentRequest represents a content creation request
type CreateContentRequest struct {
	UserID      string            `json:"-"`
	Type        brain.ContentType `json:"type"`
	Title       string            `json:"title"`
	Link        string            `json:"link,omitempty"`
	Description string            `json:"description,omitempty"`
	Collection  *string           `json:"collection,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

// ListContentRequest filters a content listing
type ListContentRequest struct {
	UserID        string
	CollectionID  *string
	Uncategorized bool
}

// UpdateContentRequest represents a partial content update.
// Collection null or "" uncategorizes the content.
type UpdateContentRequest struct {
	Title       *string
	Description *string
	Link        *string
	Tags        []string
	Collection  brain.OptionalRef
}

// MoveContentRequest is the body of a move request
type MoveContentRequest struct {
	Collection *string `json:"collection"`
}
