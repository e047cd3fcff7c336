package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/repository/memory"
	brainService "subbrain/internal/service/brain"
	"subbrain/internal/storage"
)

func newServices(t *testing.T) (brainSvc.CollectionService, brainSvc.ContentService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewMock()
	store := memory.NewStore(clk)
	collectionRepo := memory.NewCollectionRepository(store)
	contentRepo := memory.NewContentRepository(store)
	cache := brainService.NewCollectionCache(collectionRepo.ListByUser, clk, time.Minute, nil)
	blobs := storage.NewNoopBlobStore(logger)

	collections := brainService.NewCollectionService(collectionRepo, contentRepo, memory.NewTransactionManager(store), cache, blobs, nil, clk, logger)
	contents := brainService.NewContentService(contentRepo, collectionRepo, cache, blobs, nil, clk, logger)
	return collections, contents
}

func TestLoadFixture_Starter(t *testing.T) {
	f, err := LoadFixture("starter")
	require.NoError(t, err)

	require.NotNil(t, f.DefaultCollection)
	assert.Equal(t, "Inbox", f.DefaultCollection.Name)
	assert.Len(t, f.Collections, 2)
	assert.Equal(t, "Databases", f.Collections[0].Children[0].Name)

	_, err = LoadFixture("missing")
	assert.Error(t, err)
}

func TestSeed_BuildsTreeAndIsRerunnable(t *testing.T) {
	ctx := context.Background()
	collections, contents := newServices(t)
	seeder := NewSeeder(collections, contents, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f, err := LoadFixture("starter")
	require.NoError(t, err)

	sum, err := seeder.Seed(ctx, "u1", f)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Collections)
	assert.Equal(t, 6, sum.Content)
	assert.Zero(t, sum.Skipped)

	tree, err := collections.GetTree(ctx, "u1")
	require.NoError(t, err)
	flat := brainService.FlattenCollectionTree(tree)
	require.Len(t, flat, 7)

	depths := map[string]int{}
	var inbox *brain.CollectionTreeNode
	for _, n := range flat {
		depths[n.Name] = n.Depth
		if n.Name == "Inbox" {
			inbox = n
		}
	}
	assert.Equal(t, 2, depths["Document stores"])
	require.NotNil(t, inbox)
	assert.True(t, inbox.IsDefault)

	_, err = collections.DeleteCollection(ctx, "u1", inbox.ID, brain.DeleteModePromote)
	assert.ErrorIs(t, err, domain.ErrValidation)

	again, err := seeder.Seed(ctx, "u1", f)
	require.NoError(t, err)
	assert.Zero(t, again.Collections)
	assert.Equal(t, 7, again.Skipped)
}

func TestParseFixture_Invalid(t *testing.T) {
	_, err := ParseFixture([]byte("collections: [unclosed"))
	assert.Error(t, err)
}
