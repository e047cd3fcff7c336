package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

// ContentRepository implements the ContentRepository interface in memory
type ContentRepository struct {
	store *Store
}

// NewContentRepository creates a content repository backed by store
func NewContentRepository(store *Store) brainRepo.ContentRepository {
	return &ContentRepository{store: store}
}

// list returns matching rows newest first; caller must not hold mu
func (r *ContentRepository) list(match func(*contentRow) bool) []brain.Content {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*contentRow
	for _, row := range s.contents {
		if match(row) {
			rows = append(rows, row)
		}
	}
	sortContentRows(rows)

	contents := make([]brain.Content, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, cloneContent(row.Content))
	}
	return contents
}

func inSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Create inserts content
func (r *ContentRepository) Create(ctx context.Context, content *brain.Content) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := s.now()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	if content.UpdatedAt.IsZero() {
		content.UpdatedAt = now
	}
	if content.Tags == nil {
		content.Tags = []string{}
	}

	s.recordContent(ctx, content.ID)
	s.contents[content.ID] = &contentRow{Content: cloneContent(*content), seq: s.nextSeq()}
	return nil
}

// GetByID retrieves content owned by userID
func (r *ContentRepository) GetByID(ctx context.Context, id, userID string) (*brain.Content, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.contents[id]
	if !ok || row.UserID != userID {
		return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	c := cloneContent(row.Content)
	return &c, nil
}

// ListByUser returns all content of a user
func (r *ContentRepository) ListByUser(ctx context.Context, userID string) ([]brain.Content, error) {
	return r.list(func(row *contentRow) bool { return row.UserID == userID }), nil
}

// ListByCollection returns content filed directly in collectionID (nil = uncategorized)
func (r *ContentRepository) ListByCollection(ctx context.Context, userID string, collectionID *string) ([]brain.Content, error) {
	return r.list(func(row *contentRow) bool {
		if row.UserID != userID {
			return false
		}
		if collectionID == nil {
			return row.CollectionID == nil
		}
		return row.CollectionID != nil && *row.CollectionID == *collectionID
	}), nil
}

// ListByCollections returns content filed in any of the collections
func (r *ContentRepository) ListByCollections(ctx context.Context, userID string, collectionIDs []string) ([]brain.Content, error) {
	set := inSet(collectionIDs)
	return r.list(func(row *contentRow) bool {
		return row.UserID == userID && row.CollectionID != nil && set[*row.CollectionID]
	}), nil
}

// Update persists the mutable fields
func (r *ContentRepository) Update(ctx context.Context, content *brain.Content) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.contents[content.ID]
	if !ok || row.UserID != content.UserID {
		return fmt.Errorf("content %s: %w", content.ID, domain.ErrNotFound)
	}

	s.recordContent(ctx, content.ID)
	updated := cloneContent(*content)
	row.Title = updated.Title
	row.Link = updated.Link
	row.Description = updated.Description
	row.CollectionID = updated.CollectionID
	row.Tags = updated.Tags
	row.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete removes content
func (r *ContentRepository) Delete(ctx context.Context, id, userID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.contents[id]
	if !ok || row.UserID != userID {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	s.recordContent(ctx, id)
	delete(s.contents, id)
	return nil
}

// ClearCollection uncategorizes all content filed in collectionID
func (r *ContentRepository) ClearCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := s.now()
	for _, row := range s.contents {
		if row.UserID == userID && row.CollectionID != nil && *row.CollectionID == collectionID {
			s.recordContent(ctx, row.ID)
			row.CollectionID = nil
			row.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// DeleteByCollections removes all content filed in the collections
func (r *ContentRepository) DeleteByCollections(ctx context.Context, userID string, collectionIDs []string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	set := inSet(collectionIDs)
	var n int64
	for id, row := range s.contents {
		if row.UserID == userID && row.CollectionID != nil && set[*row.CollectionID] {
			s.recordContent(ctx, id)
			delete(s.contents, id)
			n++
		}
	}
	return n, nil
}

// CountByCollection returns collection ID -> number of content items
func (r *ContentRepository) CountByCollection(ctx context.Context, userID string) (map[string]int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, row := range s.contents {
		if row.UserID == userID && row.CollectionID != nil {
			counts[*row.CollectionID]++
		}
	}
	return counts, nil
}

// CountByType returns content type -> number of items
func (r *ContentRepository) CountByType(ctx context.Context, userID string) (map[brain.ContentType]int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[brain.ContentType]int)
	for _, row := range s.contents {
		if row.UserID == userID {
			counts[row.Type]++
		}
	}
	return counts, nil
}

// Search matches the query case-insensitively against title and description
func (r *ContentRepository) Search(ctx context.Context, filter *brain.SearchFilter) ([]brain.Content, error) {
	q := strings.ToLower(filter.Query)
	return r.list(func(row *contentRow) bool {
		if row.UserID != filter.UserID {
			return false
		}
		if filter.Type != nil && row.Type != *filter.Type {
			return false
		}
		if filter.CollectionID != nil && (row.CollectionID == nil || *row.CollectionID != *filter.CollectionID) {
			return false
		}
		return strings.Contains(strings.ToLower(row.Title), q) ||
			strings.Contains(strings.ToLower(row.Description), q)
	}), nil
}
