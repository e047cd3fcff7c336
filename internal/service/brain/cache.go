package brain

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"subbrain/internal/domain/models/brain"
)

const collectionCacheName = "collections"

// CollectionLoader fetches the authoritative collection list of a user
type CollectionLoader func(ctx context.Context, userID string) ([]brain.Collection, error)

// CollectionCache keeps each user's flat collection list for a bounded time.
// Collection mutations call Invalidate; a load that races with an
// invalidation is returned to its caller but not stored.
type CollectionCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	versions map[string]uint64
	load     CollectionLoader
	clock    clock.Clock
	ttl      time.Duration
	recorder Recorder
}

type cacheEntry struct {
	collections []brain.Collection
	loadedAt    time.Time
}

// NewCollectionCache creates a cache. ttl <= 0 disables caching.
func NewCollectionCache(load CollectionLoader, clk clock.Clock, ttl time.Duration, recorder Recorder) *CollectionCache {
	if clk == nil {
		clk = clock.New()
	}
	return &CollectionCache{
		entries:  make(map[string]cacheEntry),
		versions: make(map[string]uint64),
		load:     load,
		clock:    clk,
		ttl:      ttl,
		recorder: recorderOrNoop(recorder),
	}
}

// Get returns the user's collections, loading them when absent or expired.
// The returned slice is a copy the caller may modify.
func (c *CollectionCache) Get(ctx context.Context, userID string) ([]brain.Collection, error) {
	c.mu.Lock()
	if c.ttl > 0 {
		if entry, ok := c.entries[userID]; ok && c.clock.Since(entry.loadedAt) < c.ttl {
			c.mu.Unlock()
			c.recorder.CacheHit(collectionCacheName)
			return copyCollections(entry.collections), nil
		}
	}
	version := c.versions[userID]
	c.mu.Unlock()

	c.recorder.CacheMiss(collectionCacheName)
	return c.fill(ctx, userID, version)
}

// ForceRefresh reloads the user's entry regardless of its age
func (c *CollectionCache) ForceRefresh(ctx context.Context, userID string) ([]brain.Collection, error) {
	c.mu.Lock()
	c.versions[userID]++
	version := c.versions[userID]
	delete(c.entries, userID)
	c.mu.Unlock()

	return c.fill(ctx, userID, version)
}

// Invalidate drops the user's entry
func (c *CollectionCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[userID]++
	delete(c.entries, userID)
}

func (c *CollectionCache) fill(ctx context.Context, userID string, version uint64) ([]brain.Collection, error) {
	collections, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		if c.versions[userID] == version {
			c.entries[userID] = cacheEntry{
				collections: copyCollections(collections),
				loadedAt:    c.clock.Now(),
			}
		}
		c.mu.Unlock()
	}
	return collections, nil
}

func copyCollections(in []brain.Collection) []brain.Collection {
	out := make([]brain.Collection, len(in))
	for i, c := range in {
		if c.ParentID != nil {
			p := *c.ParentID
			c.ParentID = &p
		}
		out[i] = c
	}
	return out
}
