package bootstrap

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	brainSvc "subbrain/internal/domain/services/brain"
	brainService "subbrain/internal/service/brain"
	"subbrain/internal/storage"
)

// Services is the brain service graph over one set of stores
type Services struct {
	Cache       *brainService.CollectionCache
	Collections brainSvc.CollectionService
	Contents    brainSvc.ContentService
	Search      brainSvc.SearchService
	Shares      brainSvc.ShareService
}

// NewServices builds the services. recorder may be nil.
func NewServices(
	stores *Stores,
	blobs storage.BlobStore,
	recorder brainService.Recorder,
	cacheTTL time.Duration,
	clk clock.Clock,
	logger *slog.Logger,
) *Services {
	cache := brainService.NewCollectionCache(stores.Collections.ListByUser, clk, cacheTTL, recorder)
	collections := brainService.NewCollectionService(
		stores.Collections,
		stores.Contents,
		stores.TxManager,
		cache,
		blobs,
		recorder,
		clk,
		logger,
	)

	return &Services{
		Cache:       cache,
		Collections: collections,
		Contents:    brainService.NewContentService(stores.Contents, stores.Collections, cache, blobs, recorder, clk, logger),
		Search:      brainService.NewSearchService(stores.Contents, logger),
		Shares:      brainService.NewShareService(stores.Shares, stores.Contents, collections, clk, logger),
	}
}
