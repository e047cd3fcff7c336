package brain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"subbrain/internal/domain/models/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingBlobStore captures deletions and optionally fails them
type recordingBlobStore struct {
	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (b *recordingBlobStore) Delete(ctx context.Context, link string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, link)
	if b.fail {
		return errors.New("storage unavailable")
	}
	return nil
}

type fixture struct {
	clock       *clock.Mock
	store       *memory.Store
	cache       *CollectionCache
	blobs       *recordingBlobStore
	collections brainSvc.CollectionService
	contents    brainSvc.ContentService
	search      brainSvc.SearchService
	shares      brainSvc.ShareService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memory.NewStore(clk)
	collectionRepo := memory.NewCollectionRepository(store)
	contentRepo := memory.NewContentRepository(store)
	shareRepo := memory.NewShareRepository(store)
	txManager := memory.NewTransactionManager(store)
	logger := testLogger()

	cache := NewCollectionCache(collectionRepo.ListByUser, clk, time.Minute, nil)
	blobs := &recordingBlobStore{}

	collections := NewCollectionService(collectionRepo, contentRepo, txManager, cache, blobs, nil, clk, logger)
	return &fixture{
		clock:       clk,
		store:       store,
		cache:       cache,
		blobs:       blobs,
		collections: collections,
		contents:    NewContentService(contentRepo, collectionRepo, cache, blobs, nil, clk, logger),
		search:      NewSearchService(contentRepo, logger),
		shares:      NewShareService(shareRepo, contentRepo, collections, clk, logger),
	}
}

// tick advances the clock so successive creates get distinct timestamps
func (f *fixture) tick() {
	f.clock.Add(time.Second)
}

func (f *fixture) mustCollection(t *testing.T, userID, name string, parent *string) *brain.Collection {
	t.Helper()
	c, err := f.collections.CreateCollection(context.Background(), &brainSvc.CreateCollectionRequest{
		UserID:           userID,
		Name:             name,
		ParentCollection: parent,
	})
	require.NoError(t, err)
	f.tick()
	return c
}

func (f *fixture) mustContent(t *testing.T, userID, title string, collection *string) *brain.Content {
	t.Helper()
	return f.mustContentOfType(t, userID, brain.ContentTypeLink, title, "", collection)
}

func (f *fixture) mustContentOfType(t *testing.T, userID string, typ brain.ContentType, title, link string, collection *string) *brain.Content {
	t.Helper()
	c, err := f.contents.CreateContent(context.Background(), &brainSvc.CreateContentRequest{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Link:       link,
		Collection: collection,
	})
	require.NoError(t, err)
	f.tick()
	return c
}

func ptr(s string) *string { return &s }
