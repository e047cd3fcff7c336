package handler

import (
	"log/slog"
	"net/http"

	"subbrain/internal/domain/models/brain"
	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/httputil"
	brainService "subbrain/internal/service/brain"
)

// CollectionHandler handles collection HTTP requests
type CollectionHandler struct {
	service brainSvc.CollectionService
	logger  *slog.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(service brainSvc.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		service: service,
		logger:  logger,
	}
}

// updateCollectionBody distinguishes an absent parent from an explicit null
type updateCollectionBody struct {
	Name             *string                 `json:"name"`
	Description      *string                 `json:"description"`
	Icon             *string                 `json:"icon"`
	Color            *string                 `json:"color"`
	ParentCollection httputil.OptionalString `json:"parent_collection"`
}

// ListCollections returns the user's collections, newest first.
// ?refresh=true reloads the cached hierarchy first.
// GET /api/collections
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list := h.service.ListCollections
	if httputil.QueryBool(r, "refresh") {
		list = h.service.RefreshCollections
	}
	collections, err := list(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collections)
}

// CreateCollection creates a collection
// POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req brainSvc.CreateCollectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID
	req.IsDefault = false

	collection, err := h.service.CreateCollection(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, collection)
}

// GetTree returns the nested collection forest, or a depth-annotated
// pre-order list with ?flat=true
// GET /api/collections/tree
func (h *CollectionHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tree, err := h.service.GetTree(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	if httputil.QueryBool(r, "flat") {
		httputil.RespondJSON(w, http.StatusOK, flatten(tree))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// flatNode is a tree node without its children, for flat listings
type flatNode struct {
	brain.Collection
	Depth int `json:"depth"`
}

func flatten(tree []*brain.CollectionTreeNode) []flatNode {
	nodes := brainService.FlattenCollectionTree(tree)
	out := make([]flatNode, len(nodes))
	for i, n := range nodes {
		out[i] = flatNode{Collection: n.Collection, Depth: n.Depth}
	}
	return out
}

// GetCollection returns one collection
// GET /api/collections/{id}
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	collection, err := h.service.GetCollection(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collection)
}

// UpdateCollection applies a partial update (rename, restyle or move)
// PATCH /api/collections/{id}
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body updateCollectionBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	collection, err := h.service.UpdateCollection(r.Context(), userID, r.PathValue("id"), &brainSvc.UpdateCollectionRequest{
		Name:             body.Name,
		Description:      body.Description,
		Icon:             body.Icon,
		Color:            body.Color,
		ParentCollection: body.ParentCollection.Ref(),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collection)
}

// DeleteCollection deletes a collection. ?mode=promote (default) re-parents
// children; ?mode=cascade (or legacy ?deleteAll=true) removes the subtree.
// DELETE /api/collections/{id}
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	mode, ok := brain.ParseDeleteMode(r.URL.Query().Get("mode"))
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "mode must be promote or cascade")
		return
	}
	if httputil.QueryBool(r, "deleteAll") {
		mode = brain.DeleteModeCascade
	}

	result, err := h.service.DeleteCollection(r.Context(), userID, r.PathValue("id"), mode)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetCollectionContents returns the collection with the content filed in it
// GET /api/collections/{id}/contents
func (h *CollectionHandler) GetCollectionContents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetCollectionContents(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
