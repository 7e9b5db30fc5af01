package domain

import (
	"fmt"
	"math"
)

// DefaultDroneClasses returns the sentinel and scout classes. Each call
// allocates fresh specs; a fleet keeps one instance per class.
func DefaultDroneClasses() []DroneClass {
	return []DroneClass{
		{
			Key:   "sentinel",
			Label: "Sentinel",
			Specs: &DroneSpecs{
				Model:                "ENN-Sentinel-1",
				MaxFlightTimeMinutes: 45,
				MaxRangeKm:           10.0,
				CruiseSpeedMs:        15.0,
				MinBatteryPct:        20,
				CameraTypes:          []string{"Multispectral", "RGB", "Thermal"},
			},
		},
		{
			Key:   "scout",
			Label: "Scout",
			Specs: &DroneSpecs{
				Model:                "ENN-Scout-1",
				MaxFlightTimeMinutes: 30,
				MaxRangeKm:           5.0,
				CruiseSpeedMs:        20.0,
				MinBatteryPct:        15,
				CameraTypes:          []string{"RGB", "Thermal"},
			},
		},
	}
}

// Validate rejects out-of-range or non-finite coordinates.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinates, c.Lat, c.Lon)
	}
	return nil
}

// ClampBattery bounds a reported battery level to 0..100.
func ClampBattery(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
