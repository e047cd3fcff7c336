package handler

import "net/http"

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Health      *HealthHandler
	Collections *CollectionHandler
	Content     *ContentHandler
	Search      *SearchHandler
	Share       *ShareHandler
}

// Register mounts every API route on mux (Go 1.22+ enhanced patterns).
func (h *Handlers) Register(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Collection routes
	mux.HandleFunc("GET /api/collections", h.Collections.ListCollections)
	mux.HandleFunc("POST /api/collections", h.Collections.CreateCollection)
	mux.HandleFunc("GET /api/collections/tree", h.Collections.GetTree) // More specific than {id}
	mux.HandleFunc("GET /api/collections/{id}", h.Collections.GetCollection)
	mux.HandleFunc("PATCH /api/collections/{id}", h.Collections.UpdateCollection)
	mux.HandleFunc("DELETE /api/collections/{id}", h.Collections.DeleteCollection)
	mux.HandleFunc("GET /api/collections/{id}/contents", h.Collections.GetCollectionContents)

	// Content routes
	mux.HandleFunc("POST /api/content", h.Content.CreateContent)
	mux.HandleFunc("GET /api/content", h.Content.ListContent)
	mux.HandleFunc("GET /api/content/{id}", h.Content.GetContent)
	mux.HandleFunc("PATCH /api/content/{id}", h.Content.UpdateContent)
	mux.HandleFunc("DELETE /api/content/{id}", h.Content.DeleteContent)
	mux.HandleFunc("PUT /api/content/{id}/move", h.Content.MoveContent)

	// Search
	mux.HandleFunc("GET /api/search", h.Search.Search)

	// Current user
	mux.HandleFunc("GET /api/users/me/stats", h.Content.GetStats)
	mux.HandleFunc("GET /api/users/me/share", h.Share.GetShare)
	mux.HandleFunc("PATCH /api/users/me/share", h.Share.UpdateShare)

	// Public brain (no auth)
	mux.HandleFunc("GET /api/brain/{token}", h.Share.GetPublicBrain)
}
