package application

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/ports"
	"wildfire-monitoring-system/pkg/scoring"
)

// RiskEngineConfig tunes the RiskEngine.
type RiskEngineConfig struct {
	Thresholds       domain.RiskThresholds
	HistoryRetention time.Duration
	HistoryWindow    int
}

// DefaultRiskEngineConfig returns 7 days of retention and a 5-entry window.
func DefaultRiskEngineConfig() RiskEngineConfig {
	return RiskEngineConfig{
		Thresholds:       domain.DefaultRiskThresholds(),
		HistoryRetention: 7 * 24 * time.Hour,
		HistoryWindow:    5,
	}
}

// RiskEngine scores areas and keeps a rolling history per area.
type RiskEngine struct {
	areas   *AreaRegistry
	signals ports.SignalProvider
	clock   ports.Clock
	scorer  *scoring.Scorer
	cfg     RiskEngineConfig
	logger  *zap.Logger

	mu      sync.Mutex
	history map[string][]domain.RiskAssessment
}

// NewRiskEngine creates a RiskEngine.
func NewRiskEngine(
	areas *AreaRegistry,
	signals ports.SignalProvider,
	clock ports.Clock,
	cfg RiskEngineConfig,
	logger *zap.Logger,
) *RiskEngine {
	return &RiskEngine{
		areas:   areas,
		signals: signals,
		clock:   clock,
		scorer:  scoring.NewScorer(),
		cfg:     cfg,
		logger:  logger,
		history: make(map[string][]domain.RiskAssessment),
	}
}

// Thresholds returns the global alert cut-points.
func (e *RiskEngine) Thresholds() domain.RiskThresholds {
	return e.cfg.Thresholds
}

// AnalyzeArea computes a fresh assessment, appends it to the area's
// history and then prunes expired entries. The historical factor is taken
// from the stored history before pruning. It is not a pure query: every
// call grows the history.
func (e *RiskEngine) AnalyzeArea(name string) (domain.RiskAssessment, error) {
	area, err := e.areas.Area(name)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	// Signal retrieval and the satellite factors need no lock.
	grids := e.signals.Signals(area)
	temperatureRisk := e.scorer.TemperatureRisk(grids.SurfaceTemp)
	vegetationRisk := e.scorer.VegetationRisk(grids.NDVI)

	e.mu.Lock()
	defer e.mu.Unlock()

	// read under the lock so history stays in timestamp order
	now := e.clock.Now()

	temperature := domain.RiskFactor{
		Name:      domain.FactorTemperature,
		Value:     temperatureRisk,
		Weight:    scoring.TemperatureWeight,
		Timestamp: now,
		Source:    domain.SourceSatellite,
	}
	vegetation := domain.RiskFactor{
		Name:      domain.FactorVegetation,
		Value:     vegetationRisk,
		Weight:    scoring.VegetationWeight,
		Timestamp: now,
		Source:    domain.SourceSatellite,
	}
	historical := domain.RiskFactor{
		Name:      domain.FactorHistorical,
		Value:     e.scorer.HistoricalRisk(e.recentTotalsLocked(area.Key), e.cfg.HistoryWindow),
		Weight:    scoring.HistoricalWeight,
		Timestamp: now,
		Source:    domain.SourceHistorical,
	}

	factors := []domain.RiskFactor{temperature, vegetation, historical}
	total := totalRisk(factors)

	assessment := domain.RiskAssessment{
		AreaKey:            area.Key,
		AreaName:           area.Name,
		TotalRisk:          total,
		RiskFactors:        factors,
		Timestamp:          now,
		AlertLevel:         e.cfg.Thresholds.Classify(total),
		RequiresInspection: total > area.RiskThreshold,
		Coordinates:        area.Center,
	}

	e.history[area.Key] = append(e.history[area.Key], assessment)
	e.pruneLocked(area.Key, now)

	e.logger.Debug("Area analyzed",
		zap.String("area", area.Key),
		zap.Float64("total_risk", total),
		zap.String("alert_level", string(assessment.AlertLevel)),
		zap.Bool("requires_inspection", assessment.RequiresInspection))

	return assessment, nil
}

// AnalyzeAll analyses every configured area in key order.
func (e *RiskEngine) AnalyzeAll() []domain.RiskAssessment {
	keys := e.areas.Keys()
	out := make([]domain.RiskAssessment, 0, len(keys))
	for _, key := range keys {
		assessment, err := e.AnalyzeArea(key)
		if err != nil {
			// keys come from the registry, so this is a programming error
			e.logger.Error("Failed to analyze configured area", zap.String("area", key), zap.Error(err))
			continue
		}
		out = append(out, assessment)
	}
	return out
}

// GetHighRiskAreas re-analyses every area and returns those at or above
// the HIGH cut-point, riskiest first.
func (e *RiskEngine) GetHighRiskAreas() []domain.AreaRisk {
	return e.HighRiskFrom(e.AnalyzeAll())
}

// HighRiskFrom filters and ranks already computed assessments. Ties are
// broken by area key.
func (e *RiskEngine) HighRiskFrom(assessments []domain.RiskAssessment) []domain.AreaRisk {
	out := make([]domain.AreaRisk, 0)
	for _, a := range assessments {
		if a.TotalRisk >= e.cfg.Thresholds.High {
			out = append(out, domain.AreaRisk{Area: a.AreaKey, Risk: a.TotalRisk})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk != out[j].Risk {
			return out[i].Risk > out[j].Risk
		}
		return out[i].Area < out[j].Area
	})
	return out
}

// Peek returns the latest stored assessment without computing a new one.
func (e *RiskEngine) Peek(name string) (domain.RiskAssessment, bool, error) {
	area, err := e.areas.Area(name)
	if err != nil {
		return domain.RiskAssessment{}, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.history[area.Key]
	if len(h) == 0 {
		return domain.RiskAssessment{}, false, nil
	}
	return h[len(h)-1], true, nil
}

// PeekHighRiskAreas ranks the latest stored assessments without
// touching history.
func (e *RiskEngine) PeekHighRiskAreas() []domain.AreaRisk {
	var latest []domain.RiskAssessment
	for _, key := range e.areas.Keys() {
		if a, ok, _ := e.Peek(key); ok {
			latest = append(latest, a)
		}
	}
	return e.HighRiskFrom(latest)
}

// History returns a copy of the retained assessments, oldest first.
func (e *RiskEngine) History(name string) ([]domain.RiskAssessment, error) {
	area, err := e.areas.Area(name)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]domain.RiskAssessment(nil), e.history[area.Key]...), nil
}

func (e *RiskEngine) recentTotalsLocked(key string) []float64 {
	h := e.history[key]
	totals := make([]float64, len(h))
	for i, a := range h {
		totals[i] = a.TotalRisk
	}
	return totals
}

// pruneLocked drops entries strictly older than now - retention.
func (e *RiskEngine) pruneLocked(key string, now time.Time) {
	h := e.history[key]
	cutoff := now.Add(-e.cfg.HistoryRetention)

	kept := make([]domain.RiskAssessment, 0, len(h))
	for _, a := range h {
		if !a.Timestamp.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	if len(kept) < len(h) {
		e.history[key] = kept
	}
}

func totalRisk(factors []domain.RiskFactor) float64 {
	values := make([]float64, len(factors))
	weights := make([]float64, len(factors))
	for i, f := range factors {
		values[i] = f.Value
		weights[i] = f.Weight
	}
	return scoring.Total(values, weights)
}

