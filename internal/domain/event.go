package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventKind enumerates the storm event kinds the engine reasons about.
type EventKind string

// EventKind enum values.
const (
	KindHail    EventKind = "hail"
	KindWind    EventKind = "wind"
	KindTornado EventKind = "tornado"
)

func (k EventKind) String() string { return string(k) }

// Severity enumerates the derived severity levels of storm events.
type Severity string

// Severity enum values.
const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) String() string { return string(s) }

// StormEvent is the canonical, provider-agnostic representation of one storm
// occurrence. Date is a calendar date at midnight in the reference zone.
type StormEvent struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Kind      EventKind `json:"event_kind"`
	HailSize  *float64  `json:"hail_size,omitempty"`  // inches, hail only
	WindSpeed *float64  `json:"wind_speed,omitempty"` // mph, wind only
	Severity  Severity  `json:"severity"`
	Source    string    `json:"source"`
}

// HailInches returns the hail size or 0 for non-hail events.
func (e StormEvent) HailInches() float64 {
	if e.HailSize == nil {
		return 0
	}
	return *e.HailSize
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair lies within WGS-84 bounds and is not the
// (0,0) placeholder some providers emit for "unknown".
func (c Coordinates) Valid() bool {
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// AddressParts is a US street address split the way structured geocoders
// and the IHM address lookup expect it.
type AddressParts struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// IsZero reports whether no address component is set.
func (a AddressParts) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" && strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" && strings.TrimSpace(a.Zip) == ""
}

// SingleLine joins the components as "street, city, state zip", skipping
// empty parts. Free-text geocoders take this form.
func (a AddressParts) SingleLine() string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(a.Street); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(a.City); s != "" {
		parts = append(parts, s)
	}
	stateZip := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip))
	if stateZip != "" {
		parts = append(parts, stateZip)
	}
	return strings.Join(parts, ", ")
}
