// internal/models/location.go
package models

import "fmt"

// Coordinate is a WGS84 decimal-degree point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lng)
}

// Location is either a known Coordinate or unavailable (the address was never
// geocoded). The zero value is unavailable.
type Location struct {
	coord Coordinate
	known bool
}

func LocationAt(lat, lng float64) Location {
	return Location{coord: Coordinate{Lat: lat, Lng: lng}, known: true}
}

func UnavailableLocation() Location {
	return Location{}
}

// Coordinate returns the point and true, or the zero Coordinate and false when
// the location is unavailable.
func (l Location) Coordinate() (Coordinate, bool) {
	return l.coord, l.known
}

func (l Location) IsKnown() bool {
	return l.known
}

func (l Location) String() string {
	if !l.known {
		return "unavailable"
	}
	return l.coord.String()
}

// Address is a postal address with optional geocoding.
type Address struct {
	Street string   `json:"street,omitempty" yaml:"street,omitempty"`
	City   string   `json:"city,omitempty" yaml:"city,omitempty"`
	State  string   `json:"state,omitempty" yaml:"state,omitempty"`
	Zip    string   `json:"zip,omitempty" yaml:"zip,omitempty"`
	Lat    *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
}

// Location converts the nullable lat/lng pair into a Location. Both must be
// present for the location to be known.
func (a Address) Location() Location {
	if a.Lat == nil || a.Lng == nil {
		return UnavailableLocation()
	}
	return LocationAt(*a.Lat, *a.Lng)
}

// WithCoordinates returns a copy of the address geocoded at lat/lng.
func (a Address) WithCoordinates(lat, lng float64) Address {
	a.Lat = &lat
	a.Lng = &lng
	return a
}
