package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benbjohnson/clock"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"subbrain/internal/config"
	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	"subbrain/internal/domain/repositories"
	brainRepo "subbrain/internal/domain/repositories/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/storage"
)

type collectionService struct {
	collectionRepo brainRepo.CollectionRepository
	contentRepo    brainRepo.ContentRepository
	txManager      repositories.TransactionManager
	cache          *CollectionCache
	blobs          storage.BlobStore
	recorder       Recorder
	clock          clock.Clock
	logger         *slog.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	collectionRepo brainRepo.CollectionRepository,
	contentRepo brainRepo.ContentRepository,
	txManager repositories.TransactionManager,
	cache *CollectionCache,
	blobs storage.BlobStore,
	recorder Recorder,
	clk clock.Clock,
	logger *slog.Logger,
) brainSvc.CollectionService {
	if clk == nil {
		clk = clock.New()
	}
	return &collectionService{
		collectionRepo: collectionRepo,
		contentRepo:    contentRepo,
		txManager:      txManager,
		cache:          cache,
		blobs:          blobs,
		recorder:       recorderOrNoop(recorder),
		clock:          clk,
		logger:         logger,
	}
}

var errDuplicateName = &domain.ValidationError{Message: "collection with this name already exists"}

// withCounts attaches live content counts to the collections
func (s *collectionService) withCounts(ctx context.Context, userID string, collections []brain.Collection) ([]brain.Collection, error) {
	counts, err := s.contentRepo.CountByCollection(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range collections {
		collections[i].ContentCount = counts[collections[i].ID]
	}
	return collections, nil
}

// ListCollections returns all collections of the user, newest first
func (s *collectionService) ListCollections(ctx context.Context, userID string) ([]brain.Collection, error) {
	collections, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, userID, collections)
}

// RefreshCollections bypasses and reloads the cached hierarchy
func (s *collectionService) RefreshCollections(ctx context.Context, userID string) ([]brain.Collection, error) {
	collections, err := s.cache.ForceRefresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("collection cache refreshed", "user_id", userID, "count", len(collections))
	return s.withCounts(ctx, userID, collections)
}

// GetCollection returns one collection with its content count
func (s *collectionService) GetCollection(ctx context.Context, userID, id string) (*brain.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	withCount, err := s.withCounts(ctx, userID, []brain.Collection{*collection})
	if err != nil {
		return nil, err
	}
	return &withCount[0], nil
}

// GetTree returns the user's collection forest with content counts
func (s *collectionService) GetTree(ctx context.Context, userID string) ([]*brain.CollectionTreeNode, error) {
	collections, err := s.ListCollections(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildCollectionTree(collections), nil
}

// CreateCollection creates a new collection. Name uniqueness is checked here
// for the friendly error; the store constraint settles concurrent creates.
func (s *collectionService) CreateCollection(ctx context.Context, req *brainSvc.CreateCollectionRequest) (*brain.Collection, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID, err := s.resolveParent(ctx, req.UserID, req.ParentCollection)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, req.UserID, req.Name); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	collection := &brain.Collection{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        orDefault(req.Icon, brain.DefaultCollectionIcon),
		Color:       orDefault(req.Color, brain.DefaultCollectionColor),
		IsDefault:   req.IsDefault,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errDuplicateName
		}
		return nil, err
	}

	s.cache.Invalidate(req.UserID)
	s.recorder.CollectionCreated()

	s.logger.Info("collection created",
		"id", collection.ID,
		"name", collection.Name,
		"user_id", req.UserID,
		"parent_collection", collection.ParentID,
	)

	return collection, nil
}

func (s *collectionService) validateCreateRequest(req *brainSvc.CreateCollectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required.Error("collection name is required"),
			validation.RuneLength(1, config.MaxCollectionNameLength),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxCollectionDescriptionLength)),
	)
}

// UpdateCollection applies the present fields of req
func (s *collectionService) UpdateCollection(ctx context.Context, userID, id string, req *brainSvc.UpdateCollectionRequest) (*brain.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if collection.IsDefault {
			return nil, &domain.ValidationError{Message: "cannot rename default collection"}
		}
		name := strings.TrimSpace(*req.Name)
		if err := validation.Validate(name,
			validation.Required.Error("collection name is required"),
			validation.RuneLength(1, config.MaxCollectionNameLength),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if name != collection.Name {
			if err := s.ensureNameFree(ctx, userID, name); err != nil {
				return nil, err
			}
			collection.Name = name
		}
	}

	if req.Description != nil {
		if err := validation.Validate(*req.Description, validation.RuneLength(0, config.MaxCollectionDescriptionLength)); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		collection.Description = *req.Description
	}
	if req.Icon != nil {
		collection.Icon = orDefault(*req.Icon, brain.DefaultCollectionIcon)
	}
	if req.Color != nil {
		collection.Color = orDefault(*req.Color, brain.DefaultCollectionColor)
	}

	if req.ParentCollection.Present {
		parentID, err := s.resolveMove(ctx, collection, req.ParentCollection.Value)
		if err != nil {
			return nil, err
		}
		collection.ParentID = parentID
	}

	collection.UpdatedAt = s.clock.Now().UTC()
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errDuplicateName
		}
		return nil, err
	}

	s.cache.Invalidate(userID)

	s.logger.Info("collection updated",
		"id", collection.ID,
		"name", collection.Name,
		"user_id", userID,
		"parent_collection", collection.ParentID,
	)

	withCount, err := s.withCounts(ctx, userID, []brain.Collection{*collection})
	if err != nil {
		return nil, err
	}
	return &withCount[0], nil
}

// resolveMove validates a new parent for collection: it must be owned by the
// same user and must not be the collection itself or one of its descendants.
func (s *collectionService) resolveMove(ctx context.Context, collection *brain.Collection, target *string) (*string, error) {
	if target == nil || *target == "" {
		return nil, nil
	}
	if *target == collection.ID {
		return nil, &domain.ValidationError{Message: "a collection cannot be its own parent"}
	}

	parentID, err := s.resolveParent(ctx, collection.UserID, target)
	if err != nil {
		return nil, err
	}

	all, err := s.collectionRepo.ListByUser(ctx, collection.UserID)
	if err != nil {
		return nil, err
	}
	for _, desc := range BuildDescendantMap(BuildCollectionTree(all))[collection.ID] {
		if desc == *parentID {
			return nil, &domain.ValidationError{Message: "cannot move a collection into its own descendant"}
		}
	}
	return parentID, nil
}

// DeleteCollection removes a collection.
//
// Promote re-parents direct children to the deleted collection's parent and
// uncategorizes its content. Cascade deletes the collection, every descendant
// and all content filed in any of them; file blobs are removed best-effort
// after the store commit.
func (s *collectionService) DeleteCollection(ctx context.Context, userID, id string, mode brain.DeleteMode) (*brain.DeleteResult, error) {
	result := &brain.DeleteResult{Mode: mode}
	var fileLinks []string

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		collection, err := s.collectionRepo.GetByID(txCtx, id, userID)
		if err != nil {
			return err
		}
		if collection.IsDefault {
			return &domain.ValidationError{Message: "cannot delete default collection"}
		}

		switch mode {
		case brain.DeleteModePromote:
			return s.promote(txCtx, collection, result)
		case brain.DeleteModeCascade:
			links, err := s.cascade(txCtx, collection, result)
			fileLinks = links
			return err
		default:
			return &domain.ValidationError{Message: fmt.Sprintf("unknown delete mode %q", mode)}
		}
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(userID)
	s.recorder.CollectionsRemoved(string(mode), result.DeletedCollections)
	s.recorder.ContentRemoved(result.DeletedContent)
	s.deleteBlobs(ctx, fileLinks)

	s.logger.Info("collection deleted",
		"id", id,
		"user_id", userID,
		"mode", mode,
		"deleted_collections", result.DeletedCollections,
		"deleted_content", result.DeletedContent,
		"reparented_children", result.ReparentedChildren,
		"uncategorized_content", result.UncategorizedItems,
	)

	return result, nil
}

func (s *collectionService) promote(ctx context.Context, collection *brain.Collection, result *brain.DeleteResult) error {
	reparented, err := s.collectionRepo.ReparentChildren(ctx, collection.UserID, collection.ID, collection.ParentID)
	if err != nil {
		return err
	}
	uncategorized, err := s.contentRepo.ClearCollection(ctx, collection.UserID, collection.ID)
	if err != nil {
		return err
	}
	deleted, err := s.collectionRepo.DeleteMany(ctx, collection.UserID, []string{collection.ID})
	if err != nil {
		return err
	}

	result.ReparentedChildren = reparented
	result.UncategorizedItems = uncategorized
	result.DeletedCollections = deleted
	return nil
}

// cascade deletes the subtree and returns the links of deleted file content
func (s *collectionService) cascade(ctx context.Context, collection *brain.Collection, result *brain.DeleteResult) ([]string, error) {
	// One snapshot of the hierarchy, read inside the transaction
	all, err := s.collectionRepo.ListByUser(ctx, collection.UserID)
	if err != nil {
		return nil, err
	}
	descendants := BuildDescendantMap(BuildCollectionTree(all))[collection.ID]

	defaults := make(map[string]bool)
	for _, c := range all {
		if c.IsDefault {
			defaults[c.ID] = true
		}
	}
	for _, d := range descendants {
		if defaults[d] {
			return nil, &domain.ValidationError{Message: "cannot delete a collection that contains the default collection"}
		}
	}

	ids := append([]string{collection.ID}, descendants...)

	doomed, err := s.contentRepo.ListByCollections(ctx, collection.UserID, ids)
	if err != nil {
		return nil, err
	}
	var links []string
	for _, c := range doomed {
		if c.Type == brain.ContentTypeFile && c.Link != "" {
			links = append(links, c.Link)
		}
	}

	deletedContent, err := s.contentRepo.DeleteByCollections(ctx, collection.UserID, ids)
	if err != nil {
		return nil, err
	}
	deletedCollections, err := s.collectionRepo.DeleteMany(ctx, collection.UserID, ids)
	if err != nil {
		return nil, err
	}

	result.DeletedContent = deletedContent
	result.DeletedCollections = deletedCollections
	return links, nil
}

func (s *collectionService) deleteBlobs(ctx context.Context, links []string) {
	for _, link := range links {
		if err := s.blobs.Delete(ctx, link); err != nil {
			s.recorder.BlobDeleteFailed()
			s.logger.Warn("failed to delete file blob", "link", link, "error", err)
		}
	}
}

// GetCollectionContents returns the collection and the content filed directly in it
func (s *collectionService) GetCollectionContents(ctx context.Context, userID, id string) (*brain.CollectionWithContents, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	contents, err := s.contentRepo.ListByCollection(ctx, userID, &collection.ID)
	if err != nil {
		return nil, err
	}
	collection.ContentCount = len(contents)

	return &brain.CollectionWithContents{
		Collection: collection,
		Contents:   contents,
	}, nil
}

// resolveParent checks that ref names a collection owned by userID.
// Empty or nil means root.
func (s *collectionService) resolveParent(ctx context.Context, userID string, ref *string) (*string, error) {
	return resolveCollectionRef(ctx, s.collectionRepo, userID, ref, "parent collection not found")
}

func (s *collectionService) ensureNameFree(ctx context.Context, userID, name string) error {
	_, err := s.collectionRepo.GetByName(ctx, userID, name)
	switch {
	case err == nil:
		return errDuplicateName
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// resolveCollectionRef normalizes an optional collection reference and
// verifies ownership. Another user's collection is reported as missing.
func resolveCollectionRef(ctx context.Context, repo brainRepo.CollectionRepository, userID string, ref *string, notFoundMsg string) (*string, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*ref)

	target, err := repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: notFoundMsg}
		}
		return nil, err
	}
	return &target.ID, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
