package domain

import (
	"errors"
	"math"
)

// MilesPerDegreeLat is the approximate length of one degree of latitude.
const MilesPerDegreeLat = 69.0

// GeoBounds is an axis-aligned rectangle in degrees.
type GeoBounds struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Validate rejects inverted or out-of-range rectangles.
func (b GeoBounds) Validate() error {
	if b.North < b.South {
		return errors.New("bounds: north is below south")
	}
	if b.East < b.West {
		return errors.New("bounds: east is west of west")
	}
	if b.North > 90 || b.South < -90 || b.East > 180 || b.West < -180 {
		return errors.New("bounds: outside WGS-84 range")
	}
	return nil
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (b GeoBounds) Contains(lat, lng float64) bool {
	return lat <= b.North && lat >= b.South && lng <= b.East && lng >= b.West
}

// BoundsAround builds the rectangle enclosing a circle of radiusMiles around
// center, using 69 miles per degree of latitude and a cos(latitude)
// correction for longitude.
func BoundsAround(center Coordinates, radiusMiles float64) GeoBounds {
	latDelta := radiusMiles / MilesPerDegreeLat
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	lngDelta := latDelta
	if cosLat > 1e-6 {
		lngDelta = radiusMiles / (MilesPerDegreeLat * cosLat)
	}
	return GeoBounds{
		North: math.Min(90, center.Lat+latDelta),
		South: math.Max(-90, center.Lat-latDelta),
		East:  math.Min(180, center.Lng+lngDelta),
		West:  math.Max(-180, center.Lng-lngDelta),
	}
}

// DistanceMiles returns the great-circle distance between two points.
func DistanceMiles(a, b Coordinates) float64 {
	const earthRadiusMiles = 3958.8
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius keeps the events whose location lies within radiusMiles of
// center. A non-positive radius keeps everything.
func WithinRadius(events []StormEvent, center Coordinates, radiusMiles float64) []StormEvent {
	if radiusMiles <= 0 {
		return events
	}
	kept := events[:0:0]
	for _, e := range events {
		if DistanceMiles(center, Coordinates{Lat: e.Latitude, Lng: e.Longitude}) <= radiusMiles {
			kept = append(kept, e)
		}
	}
	return kept
}
