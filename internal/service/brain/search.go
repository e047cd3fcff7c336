package brain

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"subbrain/internal/config"
	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	brainSvc "subbrain/internal/domain/services/brain"
)

type searchService struct {
	contentRepo brainRepo.ContentRepository
	logger      *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(contentRepo brainRepo.ContentRepository, logger *slog.Logger) brainSvc.SearchService {
	return &searchService{
		contentRepo: contentRepo,
		logger:      logger,
	}
}

// Search matches the store-side predicate and ranks the hits in process.
// Invalid input is rejected before the store is touched.
func (s *searchService) Search(ctx context.Context, opts *brain.SearchOptions) (*brain.SearchResponse, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if utf8.RuneCountInString(opts.Query) > config.MaxSearchQueryLength {
		return nil, &domain.ValidationError{Message: "search query is too long"}
	}

	matches, err := s.contentRepo.Search(ctx, opts.Filter())
	if err != nil {
		return nil, err
	}

	results := RankResults(matches, opts.Query, opts.SortBy)

	s.logger.Debug("search completed",
		"user_id", opts.UserID,
		"sort_by", opts.SortBy,
		"type", opts.Type,
		"results", len(results),
	)

	return &brain.SearchResponse{
		Count:   len(results),
		SortBy:  opts.SortBy,
		Results: results,
	}, nil
}

// RankResults scores every match and orders them. matches must arrive newest
// first; every ordering is stable so equal keys keep that order.
func RankResults(matches []brain.Content, query string, sortBy brain.SortBy) []brain.SearchResult {
	results := make([]brain.SearchResult, len(matches))
	for i, c := range matches {
		results[i] = brain.SearchResult{Content: c, Score: ScoreContent(&c, query)}
	}

	switch sortBy {
	case brain.SortByTitle:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Content.Title < results[j].Content.Title
		})
	case brain.SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Content.CreatedAt.After(results[j].Content.CreatedAt)
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
	return results
}

// ScoreContent computes the case-insensitive relevance of c for query.
func ScoreContent(c *brain.Content, query string) int {
	q := strings.ToLower(query)
	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)

	score := 0
	if title == q {
		score += brain.ScoreTitleExact
	}
	if strings.HasPrefix(title, q) {
		score += brain.ScoreTitlePrefix
	}
	if strings.Contains(title, q) {
		score += brain.ScoreTitleContains
	}
	if desc != "" {
		if strings.HasPrefix(desc, q) {
			score += brain.ScoreDescriptionPrefix
		}
		if strings.Contains(desc, q) {
			score += brain.ScoreDescriptionMatch
		}
	}
	return score
}
