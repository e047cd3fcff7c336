package handler

import (
	"log/slog"
	"net/http"

	brainSvc "subbrain/internal/domain/services/brain"
	"subbrain/internal/httputil"
)

// ShareHandler handles brain sharing and the public brain view
type ShareHandler struct {
	service brainSvc.ShareService
	logger  *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(service brainSvc.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		service: service,
		logger:  logger,
	}
}

// GetShare returns the caller's share token and visibility
// GET /api/users/me/share
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	share, err := h.service.GetShare(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, share)
}

// UpdateShare publishes or hides the caller's brain
// PATCH /api/users/me/share
func (h *ShareHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req brainSvc.UpdateShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IsPublic == nil {
		httputil.RespondError(w, http.StatusBadRequest, "is_public is required")
		return
	}

	share, err := h.service.SetVisibility(r.Context(), userID, *req.IsPublic)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, share)
}

// GetPublicBrain returns a published brain by token. No authentication.
// GET /api/brain/{token}
func (h *ShareHandler) GetPublicBrain(w http.ResponseWriter, r *http.Request) {
	brain, err := h.service.GetPublicBrain(r.Context(), r.PathValue("token"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, brain)
}
