package location

import (
	"fmt"
	"math"
	"time"
)

// Position is a single geolocation sample. Accuracy is informational only and
// never participates in matching.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// BucketKey is the equivalence class of all coordinates that round to the
// same 2-decimal pair. Two users are "nearby" iff their keys are equal.
type BucketKey struct {
	Lat float64
	Lon float64
}

// RoundCoord rounds a coordinate to 2 decimal places. This rounding is the
// bucketing mechanism itself, not display formatting: it must match the
// ROUND(::numeric, 2) the database applies, or users sitting on a cell edge
// end up in different buckets depending on which side did the math.
func RoundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

func BucketOf(lat, lon float64) BucketKey {
	return BucketKey{Lat: RoundCoord(lat), Lon: RoundCoord(lon)}
}

// SameBucket reports whether two positions fall into the same 2-decimal cell.
func SameBucket(a, b Position) bool {
	return BucketOf(a.Latitude, a.Longitude) == BucketOf(b.Latitude, b.Longitude)
}

// Rounded returns a copy of the position with both coordinates bucketed.
// Applied at capture so raw coordinates never leave the manager.
func (p Position) Rounded() Position {
	p.Latitude = RoundCoord(p.Latitude)
	p.Longitude = RoundCoord(p.Longitude)
	return p
}

// HaversineKM returns the great-circle distance between two coordinates in
// kilometers, rounded to 2 decimal places. Pure and deterministic: symmetric
// in its arguments and zero when they are equal.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKM*c*100) / 100
}

func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("invalid coordinates: %w", ErrValidation)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinates out of range: %w", ErrValidation)
	}
	return nil
}
