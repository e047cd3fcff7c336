package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

// CollectionRepository implements the CollectionRepository interface in memory
type CollectionRepository struct {
	store *Store
}

// NewCollectionRepository creates a collection repository backed by store
func NewCollectionRepository(store *Store) brainRepo.CollectionRepository {
	return &CollectionRepository{store: store}
}

// nameTaken must be called with mu held
func (r *CollectionRepository) nameTaken(userID, name, exceptID string) (string, bool) {
	for id, row := range r.store.collections {
		if id != exceptID && row.UserID == userID && row.Name == name {
			return id, true
		}
	}
	return "", false
}

func conflictError(name, existingID string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("collection '%s' already exists", name),
		ResourceType: "collection",
		ResourceID:   existingID,
	}
}

// Create inserts a collection; (user, name) uniqueness is checked under the write lock
func (r *CollectionRepository) Create(ctx context.Context, collection *brain.Collection) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, taken := r.nameTaken(collection.UserID, collection.Name, ""); taken {
		return conflictError(collection.Name, existingID)
	}

	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	now := s.now()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	if collection.UpdatedAt.IsZero() {
		collection.UpdatedAt = now
	}

	s.recordCollection(ctx, collection.ID)
	s.collections[collection.ID] = &collectionRow{
		Collection: cloneCollection(*collection),
		seq:        s.nextSeq(),
	}
	return nil
}

// GetByID retrieves a collection owned by userID
func (r *CollectionRepository) GetByID(ctx context.Context, id, userID string) (*brain.Collection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.collections[id]
	if !ok || row.UserID != userID {
		return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	c := cloneCollection(row.Collection)
	return &c, nil
}

// GetByName retrieves a collection by name
func (r *CollectionRepository) GetByName(ctx context.Context, userID, name string) (*brain.Collection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := r.nameTaken(userID, name, "")
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	c := cloneCollection(s.collections[id].Collection)
	return &c, nil
}

// ListByUser returns all collections of a user, newest first
func (r *CollectionRepository) ListByUser(ctx context.Context, userID string) ([]brain.Collection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*collectionRow
	for _, row := range s.collections {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sortCollectionRows(rows)

	collections := make([]brain.Collection, 0, len(rows))
	for _, row := range rows {
		collections = append(collections, cloneCollection(row.Collection))
	}
	return collections, nil
}

// Update persists the mutable fields
func (r *CollectionRepository) Update(ctx context.Context, collection *brain.Collection) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.collections[collection.ID]
	if !ok || row.UserID != collection.UserID {
		return fmt.Errorf("collection %s: %w", collection.ID, domain.ErrNotFound)
	}
	if existingID, taken := r.nameTaken(collection.UserID, collection.Name, collection.ID); taken {
		return conflictError(collection.Name, existingID)
	}

	s.recordCollection(ctx, collection.ID)
	row.Name = collection.Name
	row.Description = collection.Description
	row.Icon = collection.Icon
	row.Color = collection.Color
	row.ParentID = copyString(collection.ParentID)
	row.UpdatedAt = collection.UpdatedAt
	return nil
}

// ReparentChildren moves direct children of parentID under newParentID
func (r *CollectionRepository) ReparentChildren(ctx context.Context, userID, parentID string, newParentID *string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := s.now()
	for _, row := range s.collections {
		if row.UserID == userID && row.ParentID != nil && *row.ParentID == parentID {
			s.recordCollection(ctx, row.ID)
			row.ParentID = copyString(newParentID)
			row.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// DeleteMany removes the listed collections
func (r *CollectionRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if row, ok := s.collections[id]; ok && row.UserID == userID {
			s.recordCollection(ctx, id)
			delete(s.collections, id)
			n++
		}
	}
	return n, nil
}
