// Package geo computes great-circle distances between job sites and contractors.
package geo

import (
	"errors"
	"fmt"
	"math"

	"renovation-workers/internal/models"
)

// EarthRadiusMiles is Earth's mean radius.
const EarthRadiusMiles = 3958.8

var (
	ErrCoordinatesUnavailable = errors.New("coordinates unavailable")
	ErrInvalidCoordinate      = errors.New("invalid coordinate")
)

// Distance returns the haversine distance in miles between two locations.
// Straight-line distance stands in for driving distance; there is no road
// routing.
func Distance(a, b models.Location) (float64, error) {
	ca, ok := a.Coordinate()
	if !ok {
		return 0, ErrCoordinatesUnavailable
	}
	cb, ok := b.Coordinate()
	if !ok {
		return 0, ErrCoordinatesUnavailable
	}
	return DistanceBetween(ca, cb)
}

// DistanceBetween is Distance for two known coordinates.
func DistanceBetween(a, b models.Coordinate) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}
	if err := Validate(b); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h)), nil
}

// Validate checks that c lies in the WGS84 decimal-degree ranges.
func Validate(c models.Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
