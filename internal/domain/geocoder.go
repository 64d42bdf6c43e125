package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
// A zero-value result (no coordinates) means the provider found no match.
type GeocodingResult struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"` // 0.0–1.0 provider confidence score
	Provider         string  `json:"provider,omitempty"`
}

// Found reports whether the result carries usable coordinates.
func (r GeocodingResult) Found() bool {
	return Coordinates{Lat: r.Lat, Lng: r.Lng}.Valid()
}

// Coordinates returns the result's point.
func (r GeocodingResult) Coordinates() Coordinates {
	return Coordinates{Lat: r.Lat, Lng: r.Lng}
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	// Name identifies the provider in logs, metrics and results.
	Name() string

	// Geocode returns the best match for the address. No match is an empty
	// result with a nil error; transport and decode failures are errors.
	Geocode(ctx context.Context, addr AddressParts) (GeocodingResult, error)
}
