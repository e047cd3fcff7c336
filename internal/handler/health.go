package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"subbrain/internal/httputil"
)

// Pinger checks a backing store's availability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and store health
type HealthHandler struct {
	store  Pinger
	driver string
	clock  clock.Clock
}

// NewHealthHandler creates a health handler; store may be nil
func NewHealthHandler(store Pinger, driver string, clk clock.Clock) *HealthHandler {
	if clk == nil {
		clk = clock.New()
	}
	return &HealthHandler{store: store, driver: driver, clock: clk}
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"store":  h.driver,
				"time":   h.clock.Now().UTC(),
			})
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"store":  h.driver,
		"time":   h.clock.Now().UTC(),
	})
}
