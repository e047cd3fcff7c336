package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benbjohnson/clock"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"subbrain/internal/config"
	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/storage"
)

type contentService struct {
	contentRepo    brainRepo.ContentRepository
	collectionRepo brainRepo.CollectionRepository
	cache          *CollectionCache
	blobs          storage.BlobStore
	recorder       Recorder
	clock          clock.Clock
	logger         *slog.Logger
}

// NewContentService creates a new content service
func NewContentService(
	contentRepo brainRepo.ContentRepository,
	collectionRepo brainRepo.CollectionRepository,
	cache *CollectionCache,
	blobs storage.BlobStore,
	recorder Recorder,
	clk clock.Clock,
	logger *slog.Logger,
) brainSvc.ContentService {
	if clk == nil {
		clk = clock.New()
	}
	return &contentService{
		contentRepo:    contentRepo,
		collectionRepo: collectionRepo,
		cache:          cache,
		blobs:          blobs,
		recorder:       recorderOrNoop(recorder),
		clock:          clk,
		logger:         logger,
	}
}

const collectionNotFound = "collection not found"

// CreateContent saves a link or file. Without a collection it is uncategorized.
func (s *contentService) CreateContent(ctx context.Context, req *brainSvc.CreateContentRequest) (*brain.Content, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Link = strings.TrimSpace(req.Link)
	if req.Type == "" {
		req.Type = brain.ContentTypeLink
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	collectionID, err := resolveCollectionRef(ctx, s.collectionRepo, req.UserID, req.Collection, collectionNotFound)
	if err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.clock.Now().UTC()
	content := &brain.Content{
		UserID:       req.UserID,
		Type:         req.Type,
		Title:        req.Title,
		Link:         req.Link,
		Description:  req.Description,
		CollectionID: collectionID,
		Tags:         tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, err
	}

	s.logger.Info("content created",
		"id", content.ID,
		"type", content.Type,
		"user_id", req.UserID,
		"collection", content.CollectionID,
	)

	return content, nil
}

func (s *contentService) validateCreateRequest(req *brainSvc.CreateContentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Type, validation.In(brain.ContentTypeLink, brain.ContentTypeFile).Error("type must be link or file")),
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, config.MaxContentTitleLength),
		),
		validation.Field(&req.Link, is.URL),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxContentDescriptionLength)),
	)
}

// GetContent returns one content item of the user
func (s *contentService) GetContent(ctx context.Context, userID, id string) (*brain.Content, error) {
	return s.contentRepo.GetByID(ctx, id, userID)
}

// ListContent returns the user's content, newest first
func (s *contentService) ListContent(ctx context.Context, req *brainSvc.ListContentRequest) ([]brain.Content, error) {
	if req.Uncategorized {
		return s.contentRepo.ListByCollection(ctx, req.UserID, nil)
	}

	if req.CollectionID != nil && *req.CollectionID != "" {
		collectionID, err := resolveCollectionRef(ctx, s.collectionRepo, req.UserID, req.CollectionID, collectionNotFound)
		if err != nil {
			return nil, err
		}
		return s.contentRepo.ListByCollection(ctx, req.UserID, collectionID)
	}

	return s.contentRepo.ListByUser(ctx, req.UserID)
}

// UpdateContent applies the present fields of req
func (s *contentService) UpdateContent(ctx context.Context, userID, id string, req *brainSvc.UpdateContentRequest) (*brain.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.Validate(title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, config.MaxContentTitleLength),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		content.Title = title
	}
	if req.Description != nil {
		if err := validation.Validate(*req.Description, validation.RuneLength(0, config.MaxContentDescriptionLength)); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		content.Description = *req.Description
	}
	if req.Link != nil {
		link := strings.TrimSpace(*req.Link)
		if err := validation.Validate(link, is.URL); err != nil {
			return nil, fmt.Errorf("%w: link: %v", domain.ErrValidation, err)
		}
		content.Link = link
	}
	if req.Tags != nil {
		content.Tags = req.Tags
	}
	if req.Collection.Present {
		collectionID, err := resolveCollectionRef(ctx, s.collectionRepo, userID, req.Collection.Value, collectionNotFound)
		if err != nil {
			return nil, err
		}
		content.CollectionID = collectionID
	}

	content.UpdatedAt = s.clock.Now().UTC()
	if err := s.contentRepo.Update(ctx, content); err != nil {
		return nil, err
	}

	s.logger.Info("content updated", "id", content.ID, "user_id", userID, "collection", content.CollectionID)
	return content, nil
}

// MoveContent files content into a collection; nil or "" uncategorizes it.
// Nothing is written when the content or the target collection is missing.
func (s *contentService) MoveContent(ctx context.Context, userID, id string, collectionID *string) (*brain.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	target, err := resolveCollectionRef(ctx, s.collectionRepo, userID, collectionID, collectionNotFound)
	if err != nil {
		return nil, err
	}

	content.CollectionID = target
	content.UpdatedAt = s.clock.Now().UTC()
	if err := s.contentRepo.Update(ctx, content); err != nil {
		return nil, err
	}

	s.logger.Info("content moved", "id", content.ID, "user_id", userID, "collection", target)
	return content, nil
}

// DeleteContent removes content; a file's blob is deleted best-effort afterwards.
func (s *contentService) DeleteContent(ctx context.Context, userID, id string) error {
	content, err := s.contentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.contentRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.recorder.ContentRemoved(1)

	if content.Type == brain.ContentTypeFile && content.Link != "" {
		if err := s.blobs.Delete(ctx, content.Link); err != nil {
			s.recorder.BlobDeleteFailed()
			s.logger.Warn("failed to delete file blob", "content_id", id, "link", content.Link, "error", err)
		}
	}

	s.logger.Info("content deleted", "id", id, "user_id", userID, "type", content.Type)
	return nil
}

// GetStats returns per-user content totals
func (s *contentService) GetStats(ctx context.Context, userID string) (*brain.ContentStats, error) {
	byType, err := s.contentRepo.CountByType(ctx, userID)
	if err != nil {
		return nil, err
	}

	collections, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &brain.ContentStats{
		LinkCount:       byType[brain.ContentTypeLink],
		FileCount:       byType[brain.ContentTypeFile],
		CollectionCount: len(collections),
	}
	for _, n := range byType {
		stats.TotalContent += n
	}
	return stats, nil
}
