package domain

import (
	"context"
	"time"
)

// Query is what the aggregator asks every provider for. Location is always
// resolved; Address is set only when the caller supplied one.
type Query struct {
	Address        *AddressParts
	Location       Coordinates
	LookbackMonths int
	RadiusMiles    float64
}

// RawReport is one provider report after decoding but before normalization.
// Time has already been converted to the reference zone by the adapter.
type RawReport struct {
	UpstreamID string
	KindText   string
	Time       time.Time
	Lat        *float64
	Lng        *float64
	// HailSizes holds radius-banded estimates ordered nearest first; nil
	// entries are bands the provider left empty.
	HailSizes []*float64
	WindSpeed *float64
}

// RawProviderPayload is everything one provider returned for a query.
type RawProviderPayload struct {
	Provider string
	Search   Coordinates
	Reports  []RawReport
}

// EventProvider is implemented by every storm data adapter.
type EventProvider interface {
	// Name identifies the provider in dataSources, logs and metrics.
	Name() string

	// IsConfigured reports whether the provider has what it needs (for
	// example credentials) to be called at all.
	IsConfigured() bool

	// FetchEvents queries the provider and returns its reports in the
	// intermediate payload shape.
	FetchEvents(ctx context.Context, q Query) (RawProviderPayload, error)
}
