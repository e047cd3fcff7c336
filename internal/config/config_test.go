package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "TABLE_PREFIX", "STORE_DRIVER", "SUPABASE_URL", "DATABASE_URL", "SUPABASE_DB_URL", "COLLECTION_CACHE_TTL", "MONGO_TRANSACTIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "dev_subbrain", cfg.MongoDatabase)
	assert.Empty(t, cfg.SupabaseJWKSURL)
	assert.Equal(t, DefaultCollectionCacheTTL, cfg.CollectionCacheTTL)
	assert.True(t, cfg.MongoTransactions)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_DB_URL", "postgres://legacy")
	t.Setenv("COLLECTION_CACHE_TTL", "45")
	t.Setenv("MONGO_TRANSACTIONS", "false")

	cfg := Load()
	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", cfg.SupabaseJWKSURL)
	assert.Equal(t, "postgres://legacy", cfg.DatabaseURL)
	assert.Equal(t, 45*time.Second, cfg.CollectionCacheTTL)
	assert.False(t, cfg.MongoTransactions)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"2", 2 * time.Second},
		{"0", 0},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.raw)
			assert.Equal(t, tt.want, getDuration("TEST_DURATION", time.Minute))
		})
	}
}

func TestSetupLogFile_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"subbrain-2020-01-01T00-00-00.log", "subbrain-2020-01-02T00-00-00.log", "subbrain-2020-01-03T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "subbrain-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, f.Name())
}
