package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildfire-monitoring-system/internal/application"
)

// StatusHandler serves the combined fleet and risk snapshot
type StatusHandler struct {
	publisher *application.StatusPublisher
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(publisher *application.StatusPublisher) *StatusHandler {
	return &StatusHandler{publisher: publisher}
}

// RegisterRoutes registers GET /status
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.GetStatus)
}

// GetStatus handles GET /status without re-analysing any area
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.publisher.Snapshot())
}
