package config

import "time"

const (
	// MaxCollectionNameLength is the maximum length for collection names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxCollectionNameLength = 255

	// MaxCollectionDescriptionLength caps free-text collection descriptions.
	MaxCollectionDescriptionLength = 2000

	// MaxContentTitleLength is the maximum length for content titles.
	MaxContentTitleLength = 500

	// MaxContentDescriptionLength caps free-text content descriptions.
	MaxContentDescriptionLength = 5000

	// MaxSearchQueryLength bounds the substring a search may scan for.
	MaxSearchQueryLength = 200

	// MaxRequestBodyBytes limits JSON request bodies.
	MaxRequestBodyBytes = 1 << 20

	// DefaultCollectionCacheTTL is used when COLLECTION_CACHE_TTL is unset.
	DefaultCollectionCacheTTL = 30 * time.Second
)
