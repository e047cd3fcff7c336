package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers selectable with STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Storage
	StoreDriver   string
	DatabaseURL   string
	TablePrefix   string
	MongoURI      string
	MongoDatabase string

	// Multi-document transactions need a replica set; disable for standalone servers
	MongoTransactions bool

	// Auth: JWKS verification when SupabaseURL is set, HS256 when JWTSecret is set
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	JWTSecret       string

	// Caching
	CollectionCacheTTL time.Duration

	// Logging
	LogDir      string
	LogMaxFiles int

	MetricsEnabled bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	var jwksURL string
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:   getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		TablePrefix:   tablePrefix,
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", tablePrefix+"subbrain"),

		MongoTransactions: getEnv("MONGO_TRANSACTIONS", "true") == "true",

		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		JWTSecret:       getEnv("JWT_SECRET", ""),

		CollectionCacheTTL: getDuration("COLLECTION_CACHE_TTL", DefaultCollectionCacheTTL),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),

		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go duration strings ("45s") or plain seconds ("45").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
