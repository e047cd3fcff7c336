package handler

import (
	"log/slog"
	"net/http"

	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/httputil"
)

// ContentHandler handles content HTTP requests
type ContentHandler struct {
	service brainSvc.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(service brainSvc.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger,
	}
}

type updateContentBody struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Link        *string                 `json:"link"`
	Tags        []string                `json:"tags"`
	Collection  httputil.OptionalString `json:"collection"`
}

// CreateContent saves a link or file
// POST /api/content
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req brainSvc.CreateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID

	content, err := h.service.CreateContent(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, content)
}

// ListContent lists the user's content.
// ?collection={id} filters to one collection, ?uncategorized=true to none.
// GET /api/content
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	contents, err := h.service.ListContent(r.Context(), &brainSvc.ListContentRequest{
		UserID:        userID,
		CollectionID:  httputil.QueryOptional(r, "collection"),
		Uncategorized: httputil.QueryBool(r, "uncategorized"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// GetContent returns one content item
// GET /api/content/{id}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	content, err := h.service.GetContent(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, content)
}

// UpdateContent applies a partial update; "collection": null uncategorizes
// PATCH /api/content/{id}
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body updateContentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, err := h.service.UpdateContent(r.Context(), userID, r.PathValue("id"), &brainSvc.UpdateContentRequest{
		Title:       body.Title,
		Description: body.Description,
		Link:        body.Link,
		Tags:        body.Tags,
		Collection:  body.Collection.Ref(),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, content)
}

// MoveContent files content into a collection, or uncategorizes it
// PUT /api/content/{id}/move
func (h *ContentHandler) MoveContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req brainSvc.MoveContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, err := h.service.MoveContent(r.Context(), userID, r.PathValue("id"), req.Collection)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, content)
}

// DeleteContent deletes one content item
// DELETE /api/content/{id}
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContent(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns totals by content type and the collection count
// GET /api/users/me/stats
func (h *ContentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
