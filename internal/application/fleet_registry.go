package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/ports"
)

// MaintenanceInterval is how long a drone stays airworthy after maintenance.
const MaintenanceInterval = 7 * 24 * time.Hour

// FleetRegistry is the system of record for drones and missions. One
// mutex covers both maps so that assignment can read availability and
// bind drone and mission atomically.
type FleetRegistry struct {
	clock  ports.Clock
	logger *zap.Logger

	mu       sync.Mutex
	drones   map[string]*domain.Drone
	order    []string // assignment scan order
	missions map[string]*domain.Mission
	nests    []domain.Nest
}

// NewFleetRegistry creates one drone of every class at each nest. Nests
// are processed in id order and classes in catalogue order, which fixes
// the assignment scan order.
func NewFleetRegistry(nests []domain.Nest, classes []domain.DroneClass, clock ports.Clock, logger *zap.Logger) (*FleetRegistry, error) {
	if len(nests) == 0 {
		return nil, errors.New("at least one nest is required")
	}
	if len(classes) == 0 {
		return nil, errors.New("at least one drone class is required")
	}

	sorted := append([]domain.Nest(nil), nests...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	f := &FleetRegistry{
		clock:    clock,
		logger:   logger,
		drones:   make(map[string]*domain.Drone),
		missions: make(map[string]*domain.Mission),
		nests:    sorted,
	}

	now := clock.Now()
	for _, nest := range sorted {
		if err := nest.Coords.Validate(); err != nil {
			return nil, fmt.Errorf("nest %q: %w", nest.ID, err)
		}
		for _, class := range classes {
			id := class.Key + "_" + nest.ID
			if _, exists := f.drones[id]; exists {
				return nil, fmt.Errorf("duplicate drone id %q", id)
			}
			f.drones[id] = &domain.Drone{
				ID:              id,
				Name:            class.Label + "-" + nestLabel(nest.ID),
				Class:           class.Key,
				Specs:           class.Specs,
				Status:          domain.DroneStatusIdle,
				BatteryLevel:    100,
				CurrentCoords:   nest.Coords,
				HomeNest:        nest.ID,
				LastMaintenance: now,
			}
			f.order = append(f.order, id)
		}
	}

	logger.Info("Fleet initialized", zap.Int("drones", len(f.drones)), zap.Int("nests", len(sorted)))

	return f, nil
}

// IsAvailable reports whether a drone can take a new mission: idle, not
// bound to a mission, battery above the class minimum and maintained
// within MaintenanceInterval.
func (f *FleetRegistry) IsAvailable(d domain.Drone) bool {
	return isAvailable(&d, f.clock.Now())
}

func isAvailable(d *domain.Drone, now time.Time) bool {
	return d.Status == domain.DroneStatusIdle &&
		d.CurrentMissionID == nil &&
		d.BatteryLevel > d.Specs.MinBatteryPct &&
		now.Sub(d.LastMaintenance) < MaintenanceInterval
}

// UpdateDroneStatus applies a telemetry report. Unknown drones are
// rejected before the report is validated. A RETURNING report for a
// drone with an open mission completes that mission; this is the only way
// a mission completes.
func (f *FleetRegistry) UpdateDroneStatus(droneID string, status domain.DroneStatus, battery int, coords domain.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drones[droneID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrDroneNotFound, droneID)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: drone status %q", domain.ErrInvalidStatus, status)
	}
	if err := coords.Validate(); err != nil {
		return err
	}

	f.applyStatusLocked(d, status, battery, coords, false)
	return nil
}

// applyStatusLocked overwrites drone state and advances its mission.
// Reports referencing a missing or completed mission only clear the
// drone's stale reference. Forced updates skip the transition check.
func (f *FleetRegistry) applyStatusLocked(d *domain.Drone, status domain.DroneStatus, battery int, coords domain.Coordinates, forced bool) {
	if !forced && !d.Status.CanTransitionTo(status) {
		f.logger.Warn("Out-of-order drone transition",
			zap.String("drone_id", d.ID),
			zap.String("from", string(d.Status)),
			zap.String("to", string(status)))
	}

	d.Status = status
	d.BatteryLevel = domain.ClampBattery(battery)
	d.CurrentCoords = coords

	if d.CurrentMissionID == nil {
		return
	}

	m, ok := f.missions[*d.CurrentMissionID]
	if !ok || !m.Status.Flying() || m.DroneID == nil || *m.DroneID != d.ID {
		f.logger.Warn("Dropping stale mission reference",
			zap.String("drone_id", d.ID),
			zap.String("mission_id", *d.CurrentMissionID))
		d.CurrentMissionID = nil
		return
	}

	switch status {
	case domain.DroneStatusOnMission:
		if m.Status == domain.MissionStatusLaunching {
			m.Status = domain.MissionStatusActive
		}
	case domain.DroneStatusReturning:
		now := f.clock.Now()
		m.Status = domain.MissionStatusCompleted
		m.CompletionTime = &now
		d.CurrentMissionID = nil

		f.logger.Info("Mission completed",
			zap.String("mission_id", m.ID),
			zap.String("drone_id", d.ID),
			zap.String("area", m.TargetArea))
	}
}

// MarkMaintained records a maintenance check at the current time.
func (f *FleetRegistry) MarkMaintained(droneID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drones[droneID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrDroneNotFound, droneID)
	}
	d.LastMaintenance = f.clock.Now()
	return nil
}

// Drone returns a copy of one drone.
func (f *FleetRegistry) Drone(droneID string) (domain.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drones[droneID]
	if !ok {
		return domain.Drone{}, fmt.Errorf("%w: %q", domain.ErrDroneNotFound, droneID)
	}
	return d.Clone(), nil
}

// Drones returns copies of all drones in scan order.
func (f *FleetRegistry) Drones() []domain.Drone {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Drone, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.drones[id].Clone())
	}
	return out
}

// Nests returns the configured nests sorted by id.
func (f *FleetRegistry) Nests() []domain.Nest {
	return append([]domain.Nest(nil), f.nests...)
}

// GetFleetStatus returns a read-only projection of every drone and every
// non-completed mission.
func (f *FleetRegistry) GetFleetStatus() domain.FleetStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := domain.FleetStatus{
		Drones:         make([]domain.DroneView, 0, len(f.order)),
		ActiveMissions: make([]domain.MissionView, 0),
	}

	for _, id := range f.order {
		d := f.drones[id].Clone()
		status.Drones = append(status.Drones, domain.DroneView{
			ID:      d.ID,
			Name:    d.Name,
			Status:  d.Status,
			Battery: d.BatteryLevel,
			Coords:  d.CurrentCoords,
			Mission: d.CurrentMissionID,
		})
	}

	for _, m := range f.sortedMissionsLocked() {
		if !m.Status.Open() {
			continue
		}
		c := m.Clone()
		status.ActiveMissions = append(status.ActiveMissions, domain.MissionView{
			ID:       c.ID,
			Area:     c.TargetArea,
			Priority: c.Priority,
			Status:   c.Status,
			Drone:    c.DroneID,
			Target:   c.TargetCoords,
		})
	}

	return status
}

// sortedMissionsLocked returns missions by start time, then id.
func (f *FleetRegistry) sortedMissionsLocked() []*domain.Mission {
	out := make([]*domain.Mission, 0, len(f.missions))
	for _, m := range f.missions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// nestLabel turns "castelo_novo_nest" into "Castelo".
func nestLabel(nestID string) string {
	head, _, _ := strings.Cut(nestID, "_")
	if head == "" {
		return nestID
	}
	return strings.ToUpper(head[:1]) + head[1:]
}
