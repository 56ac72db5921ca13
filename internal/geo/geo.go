// Package geo holds the shared geographic primitives: catalog locations
// and the viewport bounding box.
package geo

import "math"

// Location represents a logical place for which we can show weather.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// HasCoordinates reports whether the location carries usable coordinates.
func (l Location) HasCoordinates() bool {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lon) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Bounds is the geographic bounding box of the visible map viewport.
type Bounds struct {
	SouthWestLat float64 `json:"sw_lat"`
	SouthWestLon float64 `json:"sw_lon"`
	NorthEastLat float64 `json:"ne_lat"`
	NorthEastLon float64 `json:"ne_lon"`
}

// Contains reports whether the point lies inside the bounds (inclusive).
// A viewport whose south-west longitude is greater than its north-east
// longitude is treated as crossing the antimeridian.
func (b Bounds) Contains(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat < b.SouthWestLat || lat > b.NorthEastLat {
		return false
	}
	if b.SouthWestLon <= b.NorthEastLon {
		return lon >= b.SouthWestLon && lon <= b.NorthEastLon
	}
	return lon >= b.SouthWestLon || lon <= b.NorthEastLon
}
