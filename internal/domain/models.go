package domain

import (
	"fmt"
	"time"
)

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MonitoredArea describes a configured area under fire-risk surveillance.
type MonitoredArea struct {
	Key           string      `json:"key"`
	Name          string      `json:"name"`
	Center        Coordinates `json:"center"`
	RadiusKm      float64     `json:"radius_km"`
	RiskThreshold float64     `json:"risk_threshold"`
}

// SignalGrids holds the raw per-area inputs of one assessment.
type SignalGrids struct {
	SurfaceTemp [][]float64 `json:"surface_temp"`
	NDVI        [][]float64 `json:"ndvi"`
}

// RiskFactor is one weighted contribution to an area's total risk.
type RiskFactor struct {
	Name      FactorName   `json:"name"`
	Value     float64      `json:"value"`
	Weight    float64      `json:"weight"`
	Timestamp time.Time    `json:"timestamp"`
	Source    FactorSource `json:"source"`
}

// Contribution returns value * weight.
func (f RiskFactor) Contribution() float64 {
	return f.Value * f.Weight
}

// RiskAssessment is the immutable result of analysing one area.
type RiskAssessment struct {
	AreaKey            string       `json:"area_key"`
	AreaName           string       `json:"area_name"`
	TotalRisk          float64      `json:"total_risk"`
	RiskFactors        []RiskFactor `json:"risk_factors"`
	Timestamp          time.Time    `json:"timestamp"`
	AlertLevel         AlertLevel   `json:"alert_level"`
	RequiresInspection bool         `json:"requires_inspection"`
	Coordinates        Coordinates  `json:"coordinates"`
}

// AreaRisk is one row of the high-risk ranking.
type AreaRisk struct {
	Area string  `json:"area"`
	Risk float64 `json:"risk"`
}

// DroneSpecs is the read-only description of a drone class.
type DroneSpecs struct {
	Model                string   `json:"model"`
	MaxFlightTimeMinutes int      `json:"max_flight_time_minutes"`
	MaxRangeKm           float64  `json:"max_range_km"`
	CruiseSpeedMs        float64  `json:"cruise_speed_ms"`
	MinBatteryPct        int      `json:"min_battery_pct"`
	CameraTypes          []string `json:"camera_types"`
}

// DroneClass binds a class key ("sentinel", "scout") to its shared specs.
type DroneClass struct {
	Key   string
	Label string
	Specs *DroneSpecs
}

// Nest is a named drone base.
type Nest struct {
	ID     string      `json:"id"`
	Coords Coordinates `json:"coords"`
}

// Drone is the fleet's record of one aircraft.
type Drone struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Class            string      `json:"class"`
	Specs            *DroneSpecs `json:"specs"`
	Status           DroneStatus `json:"status"`
	BatteryLevel     int         `json:"battery_level"`
	CurrentCoords    Coordinates `json:"current_coords"`
	HomeNest         string      `json:"home_nest"`
	CurrentMissionID *string     `json:"current_mission_id"`
	LastMaintenance  time.Time   `json:"last_maintenance"`
}

// Clone returns a deep copy.
func (d *Drone) Clone() Drone {
	c := *d
	c.CurrentMissionID = cloneString(d.CurrentMissionID)
	if d.Specs != nil {
		specs := *d.Specs
		specs.CameraTypes = append([]string(nil), d.Specs.CameraTypes...)
		c.Specs = &specs
	}
	return c
}

// TelemetryReport is a status message sent by a drone or its operator.
// Status is the raw wire value and is parsed with ParseDroneStatus.
type TelemetryReport struct {
	Status       string       `json:"status"`
	BatteryLevel int          `json:"battery_level"`
	Coords       *Coordinates `json:"coords"`
}

// Parse returns the report's status and position. Coords are required.
func (t TelemetryReport) Parse() (DroneStatus, Coordinates, error) {
	status, err := ParseDroneStatus(t.Status)
	if err != nil {
		return "", Coordinates{}, err
	}
	if t.Coords == nil {
		return "", Coordinates{}, fmt.Errorf("%w: coords are required", ErrInvalidCoordinates)
	}
	return status, *t.Coords, nil
}

// Mission is an inspection flight created from a risk assessment.
type Mission struct {
	ID                       string          `json:"id"`
	TargetArea               string          `json:"target_area"`
	AreaName                 string          `json:"area_name"`
	Priority                 MissionPriority `json:"priority"`
	StartTime                time.Time       `json:"start_time"`
	EstimatedDurationMinutes int             `json:"estimated_duration_minutes"`
	TargetCoords             Coordinates     `json:"target_coords"`
	Status                   MissionStatus   `json:"status"`
	DroneID                  *string         `json:"drone_id"`
	CompletionTime           *time.Time      `json:"completion_time"`
}

// Clone returns a deep copy of the mission.
func (m *Mission) Clone() Mission {
	c := *m
	c.DroneID = cloneString(m.DroneID)
	if m.CompletionTime != nil {
		t := *m.CompletionTime
		c.CompletionTime = &t
	}
	return c
}

// DroneView is the snapshot projection of a drone.
type DroneView struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Status  DroneStatus `json:"status"`
	Battery int         `json:"battery"`
	Coords  Coordinates `json:"coords"`
	Mission *string     `json:"mission"`
}

// MissionView is the snapshot projection of a non-completed mission.
type MissionView struct {
	ID       string          `json:"id"`
	Area     string          `json:"area"`
	Priority MissionPriority `json:"priority"`
	Status   MissionStatus   `json:"status"`
	Drone    *string         `json:"drone"`
	Target   Coordinates     `json:"target_coords"`
}

// FleetStatus is a read-only snapshot of drones and open missions.
type FleetStatus struct {
	Drones         []DroneView   `json:"drones"`
	ActiveMissions []MissionView `json:"active_missions"`
}

// StatusUpdate is the payload handed to broadcast transports.
type StatusUpdate struct {
	Timestamp     time.Time   `json:"timestamp"`
	FleetStatus   FleetStatus `json:"fleet_status"`
	HighRiskAreas []AreaRisk  `json:"high_risk_areas"`
}

// CycleReport summarises one periodic scan.
type CycleReport struct {
	Started          time.Time
	Duration         time.Duration
	Assessments      []RiskAssessment
	MissionsCreated  int
	MissionsAssigned int
	Update           StatusUpdate
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
