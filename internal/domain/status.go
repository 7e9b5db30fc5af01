package domain

import (
	"fmt"
	"strings"
)

// Enums for statuses, levels and factor tags
type DroneStatus string
type MissionStatus string
type MissionPriority string
type AlertLevel string
type FactorName string
type FactorSource string

const (
	// Drone statuses
	DroneStatusIdle        DroneStatus = "idle"
	DroneStatusLaunching   DroneStatus = "launching"
	DroneStatusOnMission   DroneStatus = "on_mission"
	DroneStatusReturning   DroneStatus = "returning"
	DroneStatusCharging    DroneStatus = "charging"
	DroneStatusMaintenance DroneStatus = "maintenance"

	// Mission statuses
	MissionStatusPending   MissionStatus = "PENDING"
	MissionStatusLaunching MissionStatus = "LAUNCHING"
	MissionStatusActive    MissionStatus = "ACTIVE"
	MissionStatusCompleted MissionStatus = "COMPLETED"

	// Mission priorities
	PriorityLow      MissionPriority = "LOW"
	PriorityMedium   MissionPriority = "MEDIUM"
	PriorityHigh     MissionPriority = "HIGH"
	PriorityCritical MissionPriority = "CRITICAL"

	// Alert levels
	AlertLow      AlertLevel = "LOW"
	AlertMedium   AlertLevel = "MEDIUM"
	AlertHigh     AlertLevel = "HIGH"
	AlertCritical AlertLevel = "CRITICAL"

	// Risk factor tags
	FactorTemperature FactorName = "temperature"
	FactorVegetation  FactorName = "vegetation"
	FactorHistorical  FactorName = "historical"

	SourceSatellite  FactorSource = "satellite"
	SourceHistorical FactorSource = "historical"
)

var droneTransitions = map[DroneStatus][]DroneStatus{
	DroneStatusIdle:        {DroneStatusLaunching, DroneStatusCharging, DroneStatusMaintenance},
	DroneStatusLaunching:   {DroneStatusOnMission, DroneStatusReturning},
	DroneStatusOnMission:   {DroneStatusReturning},
	DroneStatusReturning:   {DroneStatusCharging, DroneStatusMaintenance, DroneStatusIdle},
	DroneStatusCharging:    {DroneStatusIdle, DroneStatusMaintenance},
	DroneStatusMaintenance: {DroneStatusIdle, DroneStatusCharging},
}

var missionTransitions = map[MissionStatus][]MissionStatus{
	MissionStatusPending:   {MissionStatusLaunching},
	MissionStatusLaunching: {MissionStatusActive, MissionStatusCompleted},
	MissionStatusActive:    {MissionStatusCompleted},
	MissionStatusCompleted: {},
}

// Valid reports whether s is a known drone status.
func (s DroneStatus) Valid() bool {
	_, ok := droneTransitions[s]
	return ok
}

// CanTransitionTo reports whether next follows s in the drone lifecycle.
// Repeating the current status is always allowed.
func (s DroneStatus) CanTransitionTo(next DroneStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range droneTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseDroneStatus accepts the wire form in any case, e.g. "ON_MISSION".
func ParseDroneStatus(raw string) (DroneStatus, error) {
	s := DroneStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: drone status %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Open reports whether the mission still counts as active.
func (s MissionStatus) Open() bool {
	return s != MissionStatusCompleted
}

// Flying reports whether a drone may reference a mission in this status.
func (s MissionStatus) Flying() bool {
	return s == MissionStatusLaunching || s == MissionStatusActive
}

// CanTransitionTo reports whether next follows s in the mission lifecycle.
func (s MissionStatus) CanTransitionTo(next MissionStatus) bool {
	for _, allowed := range missionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rank orders priorities, higher is more urgent.
func (p MissionPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// PriorityFor maps an alert level onto a mission priority.
func PriorityFor(level AlertLevel) MissionPriority {
	switch level {
	case AlertCritical:
		return PriorityCritical
	case AlertHigh:
		return PriorityHigh
	case AlertMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// RiskThresholds are the global alert cut-points.
type RiskThresholds struct {
	Medium   float64 `json:"medium"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// DefaultRiskThresholds returns the stock cut-points.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Medium: 0.6, High: 0.8, Critical: 0.9}
}

// Classify returns the first level whose cut-point risk reaches, from the top.
func (t RiskThresholds) Classify(risk float64) AlertLevel {
	switch {
	case risk >= t.Critical:
		return AlertCritical
	case risk >= t.High:
		return AlertHigh
	case risk >= t.Medium:
		return AlertMedium
	default:
		return AlertLow
	}
}

// Validate checks 0 < medium < high < critical <= 1.
func (t RiskThresholds) Validate() error {
	if t.Medium <= 0 || t.Critical > 1 || !(t.Medium < t.High && t.High < t.Critical) {
		return fmt.Errorf("risk thresholds must satisfy 0 < medium < high < critical <= 1, got %+v", t)
	}
	return nil
}
