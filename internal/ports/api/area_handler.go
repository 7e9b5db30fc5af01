package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildfire-monitoring-system/internal/application"
	"wildfire-monitoring-system/internal/domain"
)

// AreaHandler serves monitored areas and their risk assessments
type AreaHandler struct {
	areas *application.AreaRegistry
	risk  *application.RiskEngine
}

// NewAreaHandler creates a new AreaHandler
func NewAreaHandler(areas *application.AreaRegistry, risk *application.RiskEngine) *AreaHandler {
	return &AreaHandler{
		areas: areas,
		risk:  risk,
	}
}

// RegisterRoutes registers the /areas routes
func (h *AreaHandler) RegisterRoutes(r chi.Router) {
	r.Route("/areas", func(r chi.Router) {
		r.Get("/", h.ListAreas)
		r.Get("/high-risk", h.GetHighRiskAreas)
		r.Get("/{name}/risk", h.GetAreaRisk)
		r.Get("/{name}/history", h.GetAreaHistory)
	})
}

type areaSummary struct {
	domain.MonitoredArea
	Latest *domain.RiskAssessment `json:"latest_assessment"`
}

// ListAreas handles GET /areas
func (h *AreaHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas := h.areas.Areas()
	out := make([]areaSummary, 0, len(areas))
	for _, area := range areas {
		summary := areaSummary{MonitoredArea: area}
		if latest, ok, err := h.risk.Peek(area.Key); err == nil && ok {
			summary.Latest = &latest
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAreaRisk handles GET /areas/{name}/risk. Each call runs a fresh
// analysis and extends the area's history.
func (h *AreaHandler) GetAreaRisk(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.risk.AnalyzeArea(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// GetAreaHistory handles GET /areas/{name}/history
func (h *AreaHandler) GetAreaHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.risk.History(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GetHighRiskAreas handles GET /areas/high-risk. By default it ranks the
// latest stored assessments; ?fresh=true re-analyses every area first.
func (h *AreaHandler) GetHighRiskAreas(w http.ResponseWriter, r *http.Request) {
	var ranked []domain.AreaRisk
	if r.URL.Query().Get("fresh") == "true" {
		ranked = h.risk.GetHighRiskAreas()
	} else {
		ranked = h.risk.PeekHighRiskAreas()
	}
	writeJSON(w, http.StatusOK, ranked)
}
