package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
)

func TestCollectionRepository_UniqueNamePerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(NewStore(nil))

	first := &brain.Collection{UserID: "u1", Name: "Reading"}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &brain.Collection{UserID: "u1", Name: "Reading"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ResourceID)

	// Same name for another user is fine
	require.NoError(t, repo.Create(ctx, &brain.Collection{UserID: "u2", Name: "Reading"}))
}

func TestCollectionRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	repo := NewCollectionRepository(NewStore(clk))

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &brain.Collection{UserID: "u1", Name: name}))
		clk.Add(time.Second)
	}
	// Same timestamp: insertion order decides
	require.NoError(t, repo.Create(ctx, &brain.Collection{UserID: "u1", Name: "d"}))
	require.NoError(t, repo.Create(ctx, &brain.Collection{UserID: "u1", Name: "e"}))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)

	var names []string
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, names)
}

func TestCollectionRepository_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(NewStore(nil))

	c := &brain.Collection{UserID: "u1", Name: "mine"}
	require.NoError(t, repo.Create(ctx, c))

	_, err := repo.GetByID(ctx, c.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := repo.DeleteMany(ctx, "u2", []string{c.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollectionRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCollectionRepository(NewStore(nil))

	parent := "p"
	c := &brain.Collection{UserID: "u1", Name: "child", ParentID: &parent}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID, "u1")
	require.NoError(t, err)
	*got.ParentID = "mutated"

	again, err := repo.GetByID(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p", *again.ParentID)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	collections := NewCollectionRepository(store)
	contents := NewContentRepository(store)
	tm := NewTransactionManager(store)

	keep := &brain.Collection{UserID: "u1", Name: "keep"}
	require.NoError(t, collections.Create(ctx, keep))
	item := &brain.Content{UserID: "u1", Type: brain.ContentTypeLink, Title: "x", CollectionID: &keep.ID}
	require.NoError(t, contents.Create(ctx, item))

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := contents.DeleteByCollections(ctx, "u1", []string{keep.ID}); err != nil {
			return err
		}
		if _, err := collections.DeleteMany(ctx, "u1", []string{keep.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = collections.GetByID(ctx, keep.ID, "u1")
	assert.NoError(t, err)
	got, err := contents.GetByID(ctx, item.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, keep.ID, *got.CollectionID)
}

func TestTransactionManager_RollbackKeepsOtherWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	collections := NewCollectionRepository(store)
	contents := NewContentRepository(store)
	tm := NewTransactionManager(store)

	parent := &brain.Collection{UserID: "u1", Name: "parent"}
	require.NoError(t, collections.Create(ctx, parent))

	other := &brain.Content{UserID: "u2", Type: brain.ContentTypeLink, Title: "saved meanwhile"}
	var created *brain.Collection

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		created = &brain.Collection{UserID: "u1", Name: "inside"}
		if err := collections.Create(txCtx, created); err != nil {
			return err
		}
		if _, err := collections.ReparentChildren(txCtx, "u1", "missing", &parent.ID); err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() { done <- contents.Create(ctx, other) }()
		if err := <-done; err != nil {
			return err
		}

		parent.Name = "renamed"
		if err := collections.Update(txCtx, parent); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := contents.GetByID(ctx, other.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "saved meanwhile", got.Title)

	_, err = collections.GetByID(ctx, created.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	restored, err := collections.GetByID(ctx, parent.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "parent", restored.Name)
}

func TestTransactionManager_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	collections := NewCollectionRepository(store)
	tm := NewTransactionManager(store)

	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		return tm.ExecTx(ctx, func(ctx context.Context) error {
			return collections.Create(ctx, &brain.Collection{UserID: "u1", Name: "nested"})
		})
	})
	require.NoError(t, err)

	_, err = collections.GetByName(ctx, "u1", "nested")
	assert.NoError(t, err)
}

func TestContentRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(NewStore(nil))
	coll := "c1"

	seed := []*brain.Content{
		{UserID: "u1", Type: brain.ContentTypeLink, Title: "Go Concurrency", CollectionID: &coll},
		{UserID: "u1", Type: brain.ContentTypeFile, Title: "Notes", Description: "about GO modules"},
		{UserID: "u1", Type: brain.ContentTypeLink, Title: "Rust"},
		{UserID: "u2", Type: brain.ContentTypeLink, Title: "go for u2"},
	}
	for _, c := range seed {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.Search(ctx, &brain.SearchFilter{UserID: "u1", Query: "go"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	file := brain.ContentTypeFile
	files, err := repo.Search(ctx, &brain.SearchFilter{UserID: "u1", Query: "go", Type: &file})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Notes", files[0].Title)

	scoped, err := repo.Search(ctx, &brain.SearchFilter{UserID: "u1", Query: "go", CollectionID: &coll})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Go Concurrency", scoped[0].Title)
}

func TestShareRepository_UpsertKeepsToken(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(NewStore(nil))

	share := &brain.BrainShare{UserID: "u1", Token: "t1"}
	require.NoError(t, repo.Upsert(ctx, share))

	again := &brain.BrainShare{UserID: "u1", Token: "t2", IsPublic: true}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, "t1", again.Token)
	assert.True(t, again.IsPublic)

	byToken, err := repo.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, byToken.IsPublic)

	_, err = repo.GetByToken(ctx, "t2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
