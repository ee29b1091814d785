// pkg/utils/location/location.go
package location

import "math"

const kmPerDegree = 111.0

// ApproxDistanceKm returns a rough display distance between two points.
// Flat-earth approximation: fine for "nearby businesses" labels, not for
// real geo queries.
func ApproxDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	latDiff := lat2 - lat1
	lngDiff := lng2 - lng1
	km := math.Sqrt(latDiff*latDiff+lngDiff*lngDiff) * kmPerDegree
	return math.Round(km*100) / 100
}
