package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"subbrain/internal/domain/models/brain"
	"subbrain/internal/domain/repositories"
)

// Store is an in-process backend for development and tests. All repositories
// created from one Store share its maps and lock.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	clock       clock.Clock
	seq         int64
	collections map[string]*collectionRow
	contents    map[string]*contentRow
	shares      map[string]*brain.BrainShare // by user ID
}

type collectionRow struct {
	brain.Collection
	seq int64
}

type contentRow struct {
	brain.Content
	seq int64
}

// NewStore creates an empty store. A nil clock means the wall clock.
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{
		clock:       clk,
		collections: make(map[string]*collectionRow),
		contents:    make(map[string]*contentRow),
		shares:      make(map[string]*brain.BrainShare),
	}
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// nextSeq must be called with mu held
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneCollection(c brain.Collection) brain.Collection {
	c.ParentID = copyString(c.ParentID)
	return c
}

func cloneContent(c brain.Content) brain.Content {
	c.CollectionID = copyString(c.CollectionID)
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)
	c.Tags = tags
	return c
}

// newer orders rows newest first; insertion order breaks created_at ties
func newer(aTime time.Time, aSeq int64, bTime time.Time, bSeq int64) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aSeq > bSeq
}

func sortCollectionRows(rows []*collectionRow) {
	sort.Slice(rows, func(i, j int) bool {
		return newer(rows[i].CreatedAt, rows[i].seq, rows[j].CreatedAt, rows[j].seq)
	})
}

func sortContentRows(rows []*contentRow) {
	sort.Slice(rows, func(i, j int) bool {
		return newer(rows[i].CreatedAt, rows[i].seq, rows[j].CreatedAt, rows[j].seq)
	})
}

type txKey struct{}

// undoLog holds the pre-transaction state of every row a transaction wrote.
// A nil value means the row did not exist before.
type undoLog struct {
	collections map[string]*collectionRow
	contents    map[string]*contentRow
	shares      map[string]*brain.BrainShare
}

func newUndoLog() *undoLog {
	return &undoLog{
		collections: make(map[string]*collectionRow),
		contents:    make(map[string]*contentRow),
		shares:      make(map[string]*brain.BrainShare),
	}
}

func undoFrom(ctx context.Context) *undoLog {
	log, _ := ctx.Value(txKey{}).(*undoLog)
	return log
}

// The record* helpers must be called with mu held, before the row changes.
// Only the first write of a transaction to a row is recorded.

func (s *Store) recordCollection(ctx context.Context, id string) {
	log := undoFrom(ctx)
	if log == nil {
		return
	}
	if _, seen := log.collections[id]; seen {
		return
	}
	var prev *collectionRow
	if row, ok := s.collections[id]; ok {
		prev = &collectionRow{Collection: cloneCollection(row.Collection), seq: row.seq}
	}
	log.collections[id] = prev
}

func (s *Store) recordContent(ctx context.Context, id string) {
	log := undoFrom(ctx)
	if log == nil {
		return
	}
	if _, seen := log.contents[id]; seen {
		return
	}
	var prev *contentRow
	if row, ok := s.contents[id]; ok {
		prev = &contentRow{Content: cloneContent(row.Content), seq: row.seq}
	}
	log.contents[id] = prev
}

func (s *Store) recordShare(ctx context.Context, userID string) {
	log := undoFrom(ctx)
	if log == nil {
		return
	}
	if _, seen := log.shares[userID]; seen {
		return
	}
	var prev *brain.BrainShare
	if share, ok := s.shares[userID]; ok {
		cp := *share
		prev = &cp
	}
	log.shares[userID] = prev
}

// rollback must be called with mu held
func (s *Store) rollback(log *undoLog) {
	for id, row := range log.collections {
		if row == nil {
			delete(s.collections, id)
		} else {
			s.collections[id] = row
		}
	}
	for id, row := range log.contents {
		if row == nil {
			delete(s.contents, id)
		} else {
			s.contents[id] = row
		}
	}
	for userID, share := range log.shares {
		if share == nil {
			delete(s.shares, userID)
		} else {
			s.shares[userID] = share
		}
	}
}

// TransactionManager serializes ExecTx calls. A failed transaction undoes
// only its own writes; writes committed meanwhile by other requests stay.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn; on error every write fn made is rolled back. Nested calls join the outer one.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if undoFrom(ctx) != nil {
		return fn(ctx)
	}

	s := tm.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := newUndoLog()
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.mu.Lock()
		s.rollback(log)
		s.mu.Unlock()
		return err
	}
	return nil
}
