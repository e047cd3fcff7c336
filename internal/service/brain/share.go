package brain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	brainSvc "subbrain/internal/domain/services/brain"
)

type shareService struct {
	shareRepo   brainRepo.ShareRepository
	contentRepo brainRepo.ContentRepository
	collections brainSvc.CollectionService
	clock       clock.Clock
	logger      *slog.Logger
}

// NewShareService creates a new share service
func NewShareService(
	shareRepo brainRepo.ShareRepository,
	contentRepo brainRepo.ContentRepository,
	collections brainSvc.CollectionService,
	clk clock.Clock,
	logger *slog.Logger,
) brainSvc.ShareService {
	if clk == nil {
		clk = clock.New()
	}
	return &shareService{
		shareRepo:   shareRepo,
		contentRepo: contentRepo,
		collections: collections,
		clock:       clk,
		logger:      logger,
	}
}

// GetShare returns the user's share record, creating a private one on first use
func (s *shareService) GetShare(ctx context.Context, userID string) (*brain.BrainShare, error) {
	share, err := s.shareRepo.GetByUserID(ctx, userID)
	if err == nil {
		return share, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now().UTC()
	share = &brain.BrainShare{
		UserID:    userID,
		Token:     uuid.NewString(),
		IsPublic:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.shareRepo.Upsert(ctx, share); err != nil {
		return nil, err
	}

	s.logger.Info("brain share created", "user_id", userID)
	return share, nil
}

// SetVisibility publishes or hides the user's brain; the token never changes
func (s *shareService) SetVisibility(ctx context.Context, userID string, public bool) (*brain.BrainShare, error) {
	share, err := s.GetShare(ctx, userID)
	if err != nil {
		return nil, err
	}

	share.IsPublic = public
	share.UpdatedAt = s.clock.Now().UTC()
	if err := s.shareRepo.Upsert(ctx, share); err != nil {
		return nil, err
	}

	s.logger.Info("brain visibility changed", "user_id", userID, "is_public", public)
	return share, nil
}

// GetPublicBrain resolves a token to the owner's content and collection tree.
// Unknown tokens are NotFound; private brains are Forbidden.
func (s *shareService) GetPublicBrain(ctx context.Context, token string) (*brain.PublicBrain, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "shared brain not found"}
		}
		return nil, err
	}
	if !share.IsPublic {
		return nil, &domain.ForbiddenError{Message: "this brain is private"}
	}

	contents, err := s.contentRepo.ListByUser(ctx, share.UserID)
	if err != nil {
		return nil, err
	}
	tree, err := s.collections.GetTree(ctx, share.UserID)
	if err != nil {
		return nil, err
	}

	return &brain.PublicBrain{
		Contents:    contents,
		Collections: tree,
		Count:       len(contents),
	}, nil
}
