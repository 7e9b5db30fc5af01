package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildfire-monitoring-system/internal/application"
)

// MissionHandler serves missions and manual dispatch
type MissionHandler struct {
	scheduler *application.MissionScheduler
	risk      *application.RiskEngine
}

// NewMissionHandler creates a new MissionHandler
func NewMissionHandler(scheduler *application.MissionScheduler, risk *application.RiskEngine) *MissionHandler {
	return &MissionHandler{
		scheduler: scheduler,
		risk:      risk,
	}
}

// RegisterRoutes registers the /missions routes
func (h *MissionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/missions", func(r chi.Router) {
		r.Get("/", h.ListMissions)
		r.Post("/", h.CreateMission)
		r.Get("/active", h.ListActiveMissions)
		r.Get("/{id}", h.GetMission)
	})
}

// ListMissions handles GET /missions
func (h *MissionHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Missions())
}

// ListActiveMissions handles GET /missions/active
func (h *MissionHandler) ListActiveMissions(w http.ResponseWriter, r *http.Request) {
	missions := h.scheduler.ActiveMissions()
	if missions == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

// GetMission handles GET /missions/{id}
func (h *MissionHandler) GetMission(w http.ResponseWriter, r *http.Request) {
	m, err := h.scheduler.Mission(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateMission handles POST /missions. The area is analysed afresh and
// a mission is created regardless of its inspection threshold.
func (h *MissionHandler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Area string `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Area == "" {
		http.Error(w, "area is required", http.StatusBadRequest)
		return
	}

	assessment, err := h.risk.AnalyzeArea(request.Area)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.scheduler.CreateMission(assessment)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := h.scheduler.Mission(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
