package memory

import (
	"context"
	"fmt"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

// ShareRepository implements the ShareRepository interface in memory
type ShareRepository struct {
	store *Store
}

// NewShareRepository creates a share repository backed by store
func NewShareRepository(store *Store) brainRepo.ShareRepository {
	return &ShareRepository{store: store}
}

// GetByUserID returns the share record of a user
func (r *ShareRepository) GetByUserID(ctx context.Context, userID string) (*brain.BrainShare, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, ok := s.shares[userID]
	if !ok {
		return nil, fmt.Errorf("brain share %s: %w", userID, domain.ErrNotFound)
	}
	out := *share
	return &out, nil
}

// GetByToken resolves a share token
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*brain.BrainShare, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, share := range s.shares {
		if share.Token == token {
			out := *share
			return &out, nil
		}
	}
	return nil, fmt.Errorf("brain share %s: %w", token, domain.ErrNotFound)
}

// Upsert creates the record or updates its visibility; an existing token is kept
func (r *ShareRepository) Upsert(ctx context.Context, share *brain.BrainShare) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.shares[share.UserID]; ok {
		s.recordShare(ctx, share.UserID)
		existing.IsPublic = share.IsPublic
		existing.UpdatedAt = share.UpdatedAt
		*share = *existing
		return nil
	}

	for _, other := range s.shares {
		if other.Token == share.Token {
			return &domain.ConflictError{Message: "share token already in use", ResourceType: "brain_share"}
		}
	}

	s.recordShare(ctx, share.UserID)
	stored := *share
	s.shares[share.UserID] = &stored
	return nil
}
