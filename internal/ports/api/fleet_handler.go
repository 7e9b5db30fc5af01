package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildfire-monitoring-system/internal/application"
	"wildfire-monitoring-system/internal/domain"
)

// FleetHandler serves drone state, telemetry and recall
type FleetHandler struct {
	fleet     *application.FleetRegistry
	scheduler *application.MissionScheduler
}

// NewFleetHandler creates a new FleetHandler
func NewFleetHandler(fleet *application.FleetRegistry, scheduler *application.MissionScheduler) *FleetHandler {
	return &FleetHandler{
		fleet:     fleet,
		scheduler: scheduler,
	}
}

// RegisterRoutes registers the /drones routes
func (h *FleetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/drones", func(r chi.Router) {
		r.Get("/", h.ListDrones)
		r.Get("/{id}", h.GetDrone)
		r.Put("/{id}/telemetry", h.UpdateTelemetry)
		r.Post("/{id}/recall", h.RecallDrone)
		r.Post("/{id}/maintenance", h.MarkMaintained)
	})
	r.Get("/nests", h.ListNests)
}

type droneResponse struct {
	domain.Drone
	Available bool `json:"available"`
}

// ListDrones handles GET /drones
func (h *FleetHandler) ListDrones(w http.ResponseWriter, r *http.Request) {
	drones := h.fleet.Drones()

	status := r.URL.Query().Get("status")
	out := make([]droneResponse, 0, len(drones))
	for _, d := range drones {
		if status != "" && string(d.Status) != status {
			continue
		}
		out = append(out, droneResponse{Drone: d, Available: h.fleet.IsAvailable(d)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDrone handles GET /drones/{id}
func (h *FleetHandler) GetDrone(w http.ResponseWriter, r *http.Request) {
	d, err := h.fleet.Drone(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, droneResponse{Drone: d, Available: h.fleet.IsAvailable(d)})
}

// UpdateTelemetry handles PUT /drones/{id}/telemetry
func (h *FleetHandler) UpdateTelemetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.fleet.Drone(id); err != nil {
		writeError(w, err)
		return
	}

	var report domain.TelemetryReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, coords, err := report.Parse()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.scheduler.UpdateDroneStatus(id, status, report.BatteryLevel, coords); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecallDrone handles POST /drones/{id}/recall
func (h *FleetHandler) RecallDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.scheduler.RecallDrone(id); err != nil {
		writeError(w, err)
		return
	}

	d, err := h.fleet.Drone(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// MarkMaintained handles POST /drones/{id}/maintenance
func (h *FleetHandler) MarkMaintained(w http.ResponseWriter, r *http.Request) {
	if err := h.fleet.MarkMaintained(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNests handles GET /nests
func (h *FleetHandler) ListNests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.fleet.Nests())
}
