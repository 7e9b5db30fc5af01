package application

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/ports"
	"wildfire-monitoring-system/pkg/geo"
)

// DefaultMissionDurationMinutes is the fixed estimate for every mission.
const DefaultMissionDurationMinutes = 30

// MissionScheduler turns assessments into missions and binds drones to them
type MissionScheduler struct {
	fleet  *FleetRegistry
	areas  *AreaRegistry
	clock  ports.Clock
	logger *zap.Logger
	newID  func() string
}

// NewMissionScheduler creates a MissionScheduler over the fleet
func NewMissionScheduler(fleet *FleetRegistry, areas *AreaRegistry, clock ports.Clock, logger *zap.Logger) *MissionScheduler {
	return &MissionScheduler{
		fleet:  fleet,
		areas:  areas,
		clock:  clock,
		logger: logger,
		newID:  newMissionID,
	}
}

// newMissionID returns a time-ordered (UUIDv7) identifier.
func newMissionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "mission_" + id.String()
}

// CreateMission records a PENDING mission for the assessment and tries to
// assign the nearest available drone straight away. Finding no drone is
// not an error: the mission stays PENDING until AssignPending runs.
func (s *MissionScheduler) CreateMission(assessment domain.RiskAssessment) (string, error) {
	area, err := s.areas.Area(assessment.AreaKey)
	if err != nil {
		return "", err
	}

	mission := &domain.Mission{
		ID:                       s.newID(),
		TargetArea:               area.Key,
		AreaName:                 area.Name,
		Priority:                 domain.PriorityFor(assessment.AlertLevel),
		StartTime:                s.clock.Now(),
		EstimatedDurationMinutes: DefaultMissionDurationMinutes,
		TargetCoords:             assessment.Coordinates,
		Status:                   domain.MissionStatusPending,
	}

	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	s.fleet.missions[mission.ID] = mission

	s.logger.Info("Mission created",
		zap.String("mission_id", mission.ID),
		zap.String("area", mission.TargetArea),
		zap.String("priority", string(mission.Priority)),
		zap.Float64("total_risk", assessment.TotalRisk))

	s.assignLocked(mission)

	return mission.ID, nil
}

// AssignPending retries assignment for every PENDING mission, most urgent
// and then oldest first, and returns how many were bound to a drone.
func (s *MissionScheduler) AssignPending() int {
	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	var pending []*domain.Mission
	for _, m := range s.fleet.sortedMissionsLocked() {
		if m.Status == domain.MissionStatusPending {
			pending = append(pending, m)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Priority.Rank() > pending[j].Priority.Rank()
	})

	// availability does not depend on the mission, so the first miss ends the pass
	assigned := 0
	for _, m := range pending {
		if !s.assignLocked(m) {
			break
		}
		assigned++
	}
	return assigned
}

// assignLocked binds the nearest available drone by planar distance.
// Equidistant drones resolve to the first in fleet scan order.
func (s *MissionScheduler) assignLocked(m *domain.Mission) bool {
	now := s.clock.Now()

	var best *domain.Drone
	minDistance := math.Inf(1)

	for _, id := range s.fleet.order {
		d := s.fleet.drones[id]
		if !isAvailable(d, now) {
			continue
		}
		distance := geo.PlanarDistanceKm(d.CurrentCoords.Lat, d.CurrentCoords.Lon, m.TargetCoords.Lat, m.TargetCoords.Lon)
		if distance < minDistance {
			minDistance = distance
			best = d
		}
	}

	if best == nil {
		s.logger.Warn("No eligible drone, mission stays pending",
			zap.String("mission_id", m.ID),
			zap.String("area", m.TargetArea))
		return false
	}

	missionID := m.ID
	droneID := best.ID

	best.Status = domain.DroneStatusLaunching
	best.CurrentMissionID = &missionID
	m.Status = domain.MissionStatusLaunching
	m.DroneID = &droneID

	s.logger.Info("Drone assigned",
		zap.String("mission_id", m.ID),
		zap.String("drone_id", best.ID),
		zap.Float64("distance_km", minDistance))

	return true
}

// UpdateDroneStatus forwards telemetry to the fleet.
func (s *MissionScheduler) UpdateDroneStatus(droneID string, status domain.DroneStatus, battery int, coords domain.Coordinates) error {
	return s.fleet.UpdateDroneStatus(droneID, status, battery, coords)
}

// RecallDrone forces a drone to RETURNING, completing its mission if it
// has one. Recalling a drone that is already returning without a mission
// does nothing.
func (s *MissionScheduler) RecallDrone(droneID string) error {
	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	d, ok := s.fleet.drones[droneID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrDroneNotFound, droneID)
	}

	if d.Status == domain.DroneStatusReturning && d.CurrentMissionID == nil {
		return nil
	}

	s.logger.Info("Drone recalled", zap.String("drone_id", droneID), zap.String("from", string(d.Status)))
	s.fleet.applyStatusLocked(d, domain.DroneStatusReturning, d.BatteryLevel, d.CurrentCoords, true)

	return nil
}

// Mission returns a copy of one mission.
func (s *MissionScheduler) Mission(id string) (domain.Mission, error) {
	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	m, ok := s.fleet.missions[id]
	if !ok {
		return domain.Mission{}, fmt.Errorf("%w: %q", domain.ErrMissionNotFound, id)
	}
	return m.Clone(), nil
}

// Missions returns copies of all missions, oldest first.
func (s *MissionScheduler) Missions() []domain.Mission {
	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	sorted := s.fleet.sortedMissionsLocked()
	out := make([]domain.Mission, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, m.Clone())
	}
	return out
}

// ActiveMissions returns copies of the non-completed missions.
func (s *MissionScheduler) ActiveMissions() []domain.Mission {
	var out []domain.Mission
	for _, m := range s.Missions() {
		if m.Status.Open() {
			out = append(out, m)
		}
	}
	return out
}

// HasOpenMission reports whether an area already has a non-completed mission.
func (s *MissionScheduler) HasOpenMission(areaKey string) bool {
	key := normalizeKey(areaKey)

	s.fleet.mu.Lock()
	defer s.fleet.mu.Unlock()

	for _, m := range s.fleet.missions {
		if m.TargetArea == key && m.Status.Open() {
			return true
		}
	}
	return false
}
