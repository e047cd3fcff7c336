package handler

import (
	"log/slog"
	"net/http"

	"subbrain/internal/domain/models/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/httputil"
)

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	service brainSvc.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service brainSvc.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

// Search ranks the user's content against a free-text query
// GET /api/search?query=...&type=all|link|file&sortBy=relevance|date|title&collection={id}
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := &brain.SearchOptions{
		UserID:       userID,
		Query:        q.Get("query"),
		Type:         q.Get("type"),
		SortBy:       brain.SortBy(q.Get("sortBy")),
		CollectionID: httputil.QueryOptional(r, "collection"),
	}

	result, err := h.service.Search(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
