package brain

import (
	"fmt"
	"strings"
)

// SortBy selects the ordering of search results.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByDate      SortBy = "date"
	SortByTitle     SortBy = "title"
)

// TypeFilterAll disables filtering by content type.
const TypeFilterAll = "all"

// Relevance weights. A title equal to the query also starts with and contains
// it, so an exact title match scores 1150 before description bonuses.
const (
	ScoreTitleExact        = 1000
	ScoreTitlePrefix       = 100
	ScoreTitleContains     = 50
	ScoreDescriptionPrefix = 20
	ScoreDescriptionMatch  = 10
)

// SearchOptions configures a content search for one user.
type SearchOptions struct {
	UserID string

	// Query is matched case-insensitively as a substring of title or
	// description, exactly as given; surrounding spaces are significant.
	Query string

	// Type is "", "all", "link" or "file"
	Type string

	// SortBy defaults to relevance
	SortBy SortBy

	// CollectionID restricts results to content filed directly in this collection.
	// Descendant collections are not included.
	CollectionID *string
}

// ApplyDefaults fills in default values for unset fields
func (opts *SearchOptions) ApplyDefaults() {
	if opts.SortBy == "" {
		opts.SortBy = SortByRelevance
	}
	if opts.Type == "" {
		opts.Type = TypeFilterAll
	}
	if opts.CollectionID != nil && *opts.CollectionID == "" {
		opts.CollectionID = nil
	}
}

// Validate checks that required fields are set and values are known
func (opts *SearchOptions) Validate() error {
	if strings.TrimSpace(opts.Query) == "" {
		return fmt.Errorf("search query is required")
	}

	switch opts.Type {
	case TypeFilterAll, string(ContentTypeLink), string(ContentTypeFile):
	default:
		return fmt.Errorf("invalid type filter: %q (supported: all, link, file)", opts.Type)
	}

	switch opts.SortBy {
	case SortByRelevance, SortByDate, SortByTitle:
	default:
		return fmt.Errorf("invalid sortBy: %q (supported: relevance, date, title)", opts.SortBy)
	}

	return nil
}

// SearchFilter is the store-side predicate of a search. Stores match Query
// literally (wildcards escaped) and return results newest first.
type SearchFilter struct {
	UserID       string
	Query        string
	Type         *ContentType
	CollectionID *string
}

// Filter derives the store predicate from validated options.
func (opts *SearchOptions) Filter() *SearchFilter {
	f := &SearchFilter{
		UserID:       opts.UserID,
		Query:        opts.Query,
		CollectionID: opts.CollectionID,
	}
	if opts.Type != TypeFilterAll {
		t := ContentType(opts.Type)
		f.Type = &t
	}
	return f
}

// SearchResult is a single ranked hit
type SearchResult struct {
	Content Content `json:"content"`
	Score   int     `json:"score"`
}

// SearchResponse is the ranked result list for a query
type SearchResponse struct {
	Count   int            `json:"count"`
	SortBy  SortBy         `json:"sort_by"`
	Results []SearchResult `json:"results"`
}
