package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	fundaoCenter      = domain.Coordinates{Lat: 40.1397, Lon: -7.5006}
	casteloNovoCenter = domain.Coordinates{Lat: 40.0789, Lon: -7.4947}
)

func testAreas() []domain.MonitoredArea {
	return []domain.MonitoredArea{
		{Key: "fundao", Name: "Fundão", Center: fundaoCenter, RadiusKm: 5, RiskThreshold: 0.7},
		{Key: "castelo_novo", Name: "Castelo Novo", Center: casteloNovoCenter, RadiusKm: 5, RiskThreshold: 0.7},
	}
}

func testNests() []domain.Nest {
	return []domain.Nest{
		{ID: "fundao_nest", Coords: fundaoCenter},
		{ID: "castelo_novo_nest", Coords: casteloNovoCenter},
	}
}

// hotGrids produce max 48°C, mean 40°C and mean NDVI 0.1.
func hotGrids() domain.SignalGrids {
	return domain.SignalGrids{
		SurfaceTemp: [][]float64{{48, 32}},
		NDVI:        [][]float64{{0.1, 0.1}},
	}
}

// extremeGrids saturate the satellite factors.
func extremeGrids() domain.SignalGrids {
	return domain.SignalGrids{
		SurfaceTemp: [][]float64{{55, 60}},
		NDVI:        [][]float64{{0, 0}},
	}
}

// mildGrids score zero on the satellite factors.
func mildGrids() domain.SignalGrids {
	return domain.SignalGrids{
		SurfaceTemp: [][]float64{{10, 12}},
		NDVI:        [][]float64{{1, 1}},
	}
}

type testEngine struct {
	clock     *fakeClock
	signals   *StaticSignalProvider
	areas     *AreaRegistry
	risk      *RiskEngine
	fleet     *FleetRegistry
	scheduler *MissionScheduler
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	logger := zap.NewNop()
	clock := newFakeClock()
	signals := NewStaticSignalProvider()

	areas, err := NewAreaRegistry(testAreas())
	require.NoError(t, err)

	fleet, err := NewFleetRegistry(testNests(), domain.DefaultDroneClasses(), clock, logger)
	require.NoError(t, err)

	return &testEngine{
		clock:     clock,
		signals:   signals,
		areas:     areas,
		risk:      NewRiskEngine(areas, signals, clock, DefaultRiskEngineConfig(), logger),
		fleet:     fleet,
		scheduler: NewMissionScheduler(fleet, areas, clock, logger),
	}
}

// assessmentAt fabricates an assessment targeting arbitrary coordinates.
func assessmentAt(areaKey string, level domain.AlertLevel, coords domain.Coordinates) domain.RiskAssessment {
	return domain.RiskAssessment{
		AreaKey:            areaKey,
		TotalRisk:          0.85,
		AlertLevel:         level,
		RequiresInspection: true,
		Coordinates:        coords,
	}
}

// exhaustFleet parks every drone so nothing is available.
func exhaustFleet(t *testing.T, e *testEngine) {
	t.Helper()
	for _, d := range e.fleet.Drones() {
		require.NoError(t, e.fleet.UpdateDroneStatus(d.ID, domain.DroneStatusCharging, 10, d.CurrentCoords))
	}
}
