package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates tables and indexes if they don't exist.
// The (user_id, name) unique constraint is what makes duplicate collection
// names impossible under concurrent creates.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Collections + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id TEXT NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '📁',
			color TEXT NOT NULL DEFAULT '#6B7280',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			parent_id UUID REFERENCES ` + tables.Collections + `(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Contents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'link' CHECK (type IN ('link', 'file')),
			title VARCHAR(500) NOT NULL,
			link TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			collection_id UUID REFERENCES ` + tables.Collections + `(id) ON DELETE SET NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.BrainShares + ` (
			user_id TEXT PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `collections_user_parent ON ` + tables.Collections + `(user_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `contents_user_created ON ` + tables.Contents + `(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `contents_user_collection ON ` + tables.Contents + `(user_id, collection_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops all tables in reverse dependency order
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}
