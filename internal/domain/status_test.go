package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskThresholds_Classify(t *testing.T) {
	th := DefaultRiskThresholds()

	tests := []struct {
		risk float64
		want AlertLevel
	}{
		{0, AlertLow},
		{0.5999, AlertLow},
		{0.6, AlertMedium},
		{0.7999, AlertMedium},
		{0.8, AlertHigh},
		{0.8999, AlertHigh},
		{0.9, AlertCritical},
		{1, AlertCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Classify(tt.risk), "risk %v", tt.risk)
	}
}

func TestRiskThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultRiskThresholds().Validate())
	assert.NoError(t, RiskThresholds{Medium: 0.1, High: 0.2, Critical: 1}.Validate())

	assert.Error(t, RiskThresholds{Medium: 0, High: 0.8, Critical: 0.9}.Validate())
	assert.Error(t, RiskThresholds{Medium: 0.8, High: 0.8, Critical: 0.9}.Validate())
	assert.Error(t, RiskThresholds{Medium: 0.6, High: 0.95, Critical: 0.9}.Validate())
	assert.Error(t, RiskThresholds{Medium: 0.6, High: 0.8, Critical: 1.1}.Validate())
}

func TestParseDroneStatus(t *testing.T) {
	s, err := ParseDroneStatus("ON_MISSION")
	require.NoError(t, err)
	assert.Equal(t, DroneStatusOnMission, s)

	s, err = ParseDroneStatus(" returning ")
	require.NoError(t, err)
	assert.Equal(t, DroneStatusReturning, s)

	_, err = ParseDroneStatus("hovering")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseDroneStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDroneStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, DroneStatusIdle.CanTransitionTo(DroneStatusLaunching))
	assert.True(t, DroneStatusLaunching.CanTransitionTo(DroneStatusOnMission))
	assert.True(t, DroneStatusOnMission.CanTransitionTo(DroneStatusReturning))
	assert.True(t, DroneStatusReturning.CanTransitionTo(DroneStatusCharging))
	assert.True(t, DroneStatusCharging.CanTransitionTo(DroneStatusIdle))
	assert.True(t, DroneStatusOnMission.CanTransitionTo(DroneStatusOnMission))

	assert.False(t, DroneStatusIdle.CanTransitionTo(DroneStatusOnMission))
	assert.False(t, DroneStatusCharging.CanTransitionTo(DroneStatusLaunching))
}

func TestMissionStatus(t *testing.T) {
	assert.True(t, MissionStatusPending.CanTransitionTo(MissionStatusLaunching))
	assert.True(t, MissionStatusLaunching.CanTransitionTo(MissionStatusActive))
	assert.True(t, MissionStatusLaunching.CanTransitionTo(MissionStatusCompleted))
	assert.False(t, MissionStatusCompleted.CanTransitionTo(MissionStatusActive))
	assert.False(t, MissionStatusPending.CanTransitionTo(MissionStatusActive))

	assert.True(t, MissionStatusPending.Open())
	assert.False(t, MissionStatusCompleted.Open())
	assert.False(t, MissionStatusPending.Flying())
	assert.True(t, MissionStatusActive.Flying())
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityCritical, PriorityFor(AlertCritical))
	assert.Equal(t, PriorityHigh, PriorityFor(AlertHigh))
	assert.Equal(t, PriorityMedium, PriorityFor(AlertMedium))
	assert.Equal(t, PriorityLow, PriorityFor(AlertLow))
	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestCoordinates_Validate(t *testing.T) {
	assert.NoError(t, Coordinates{Lat: 40.1397, Lon: -7.5006}.Validate())
	assert.NoError(t, Coordinates{Lat: -90, Lon: 180}.Validate())
	assert.ErrorIs(t, Coordinates{Lat: 90.1}.Validate(), ErrInvalidCoordinates)
	assert.ErrorIs(t, Coordinates{Lon: -180.5}.Validate(), ErrInvalidCoordinates)
}

func TestClampBattery(t *testing.T) {
	assert.Equal(t, 0, ClampBattery(-3))
	assert.Equal(t, 55, ClampBattery(55))
	assert.Equal(t, 100, ClampBattery(140))
}

func TestDrone_Clone(t *testing.T) {
	mission := "mission_1"
	d := Drone{ID: "d", Specs: DefaultDroneClasses()[0].Specs, CurrentMissionID: &mission}

	c := d.Clone()
	*c.CurrentMissionID = "other"
	c.Specs.CameraTypes[0] = "Lidar"

	assert.Equal(t, "mission_1", *d.CurrentMissionID)
	assert.Equal(t, "Multispectral", d.Specs.CameraTypes[0])
}

func TestTelemetryReport_Parse(t *testing.T) {
	coords := Coordinates{Lat: 40.1, Lon: -7.5}

	status, got, err := TelemetryReport{Status: "ON_MISSION", Coords: &coords}.Parse()
	require.NoError(t, err)
	assert.Equal(t, DroneStatusOnMission, status)
	assert.Equal(t, coords, got)

	_, _, err = TelemetryReport{Status: "idle"}.Parse()
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, _, err = TelemetryReport{Status: "hovering", Coords: &coords}.Parse()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
