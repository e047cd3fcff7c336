package brain

import (
	"context"

	"subbrain/internal/domain/models/brain"
)

// SearchService finds and ranks a user's content
type SearchService interface {
	Search(ctx context.Context, opts *brain.SearchOptions) (*brain.SearchResponse, error)
}
