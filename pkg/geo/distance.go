package geo

import "math"

// KmPerDegree is the rough length of one degree used by PlanarDistanceKm.
const KmPerDegree = 111.0

// PlanarDistanceKm treats lat/lon degrees as a flat plane and scales by
// KmPerDegree. It ignores longitude convergence, so east-west distances
// are overstated away from the equator. Drone assignment depends on this
// exact formula; do not swap in haversine without updating callers.
func PlanarDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	return math.Sqrt(dLat*dLat+dLon*dLon) * KmPerDegree
}
