package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbrain/internal/domain/models/brain"
)

type countingLoader struct {
	calls int
	names []string
	err   error
}

func (l *countingLoader) load(ctx context.Context, userID string) ([]brain.Collection, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	out := make([]brain.Collection, len(l.names))
	for i, n := range l.names {
		out[i] = brain.Collection{ID: n, UserID: userID, Name: n}
	}
	return out, nil
}

func TestCollectionCache_ServesWithinTTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	loader := &countingLoader{names: []string{"a"}}
	cache := NewCollectionCache(loader.load, clk, time.Minute, nil)

	_, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	clk.Add(59 * time.Second)
	_, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	clk.Add(time.Second)
	_, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestCollectionCache_PerUserEntries(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{names: []string{"a"}}
	cache := NewCollectionCache(loader.load, clock.NewMock(), time.Minute, nil)

	a, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	b, err := cache.Get(ctx, "u2")
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, "u1", a[0].UserID)
	assert.Equal(t, "u2", b[0].UserID)
}

func TestCollectionCache_InvalidateAndForceRefresh(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{names: []string{"a"}}
	cache := NewCollectionCache(loader.load, clock.NewMock(), time.Minute, nil)

	_, _ = cache.Get(ctx, "u1")
	cache.Invalidate("u1")
	_, _ = cache.Get(ctx, "u1")
	assert.Equal(t, 2, loader.calls)

	loader.names = []string{"a", "b"}
	fresh, err := cache.ForceRefresh(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Equal(t, 3, loader.calls)

	cached, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Equal(t, 3, loader.calls)
}

func TestCollectionCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{names: []string{"a"}}
	cache := NewCollectionCache(loader.load, clock.NewMock(), time.Minute, nil)

	first, _ := cache.Get(ctx, "u1")
	first[0].Name = "changed"

	second, _ := cache.Get(ctx, "u1")
	assert.Equal(t, "a", second[0].Name)
}

func TestCollectionCache_DisabledWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{names: []string{"a"}}
	cache := NewCollectionCache(loader.load, clock.NewMock(), 0, nil)

	_, _ = cache.Get(ctx, "u1")
	_, _ = cache.Get(ctx, "u1")
	assert.Equal(t, 2, loader.calls)
}

func TestCollectionCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{err: errors.New("db down")}
	cache := NewCollectionCache(loader.load, clock.NewMock(), time.Minute, nil)

	_, err := cache.Get(ctx, "u1")
	require.Error(t, err)

	loader.err = nil
	loader.names = []string{"a"}
	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
