package storage

import (
	"context"
	"log/slog"
)

// BlobStore is the binary storage provider holding uploaded files.
// Only deletion is consumed here; uploads happen before content is created.
type BlobStore interface {
	// Delete removes the object behind link. Callers treat failures as best-effort.
	Delete(ctx context.Context, link string) error
}

// NoopBlobStore is used when no storage provider is configured.
type NoopBlobStore struct {
	logger *slog.Logger
}

// NewNoopBlobStore creates a blob store that only logs deletions
func NewNoopBlobStore(logger *slog.Logger) *NoopBlobStore {
	return &NoopBlobStore{logger: logger}
}

func (s *NoopBlobStore) Delete(ctx context.Context, link string) error {
	s.logger.Debug("blob delete skipped, no storage provider configured", "link", link)
	return nil
}
