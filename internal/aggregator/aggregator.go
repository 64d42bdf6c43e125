// Package aggregator resolves a search location and gathers storm events
// from every configured provider concurrently.
//
// A provider that fails, hangs or is not configured never fails the
// request: it is recorded in the per-provider status list and left out of
// DataSources. Only an unusable request or an address no geocoder can place
// is returned as an error.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
)

// Request asks for the storm history around an address or a point.
// Location wins when both are set. Zero LookbackMonths or RadiusMiles
// take the configured defaults.
type Request struct {
	Address        *domain.AddressParts `json:"address,omitempty"`
	Location       *domain.Coordinates  `json:"location,omitempty"`
	LookbackMonths int                  `json:"lookback_months,omitempty"`
	RadiusMiles    float64              `json:"radius_miles,omitempty"`
}

// Result is the merged answer from every provider that responded in time.
type Result struct {
	Events      []domain.StormEvent
	DataSources []string
	Providers   []domain.ProviderStatus
	SearchArea  domain.SearchArea
	Message     string
	Geocoded    *domain.GeocodingResult
}

// Config tunes the fan-out.
type Config struct {
	ProviderTimeout       time.Duration
	DefaultLookbackMonths int
	DefaultRadiusMiles    float64
}

// Aggregator fans a request out to storm data providers.
type Aggregator struct {
	geocoder  domain.Geocoder
	providers []domain.EventProvider
	cfg       Config
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an Aggregator. Provider order is the order events are merged
// in and statuses are reported in.
func New(geocoder domain.Geocoder, providers []domain.EventProvider, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		geocoder:  geocoder,
		providers: providers,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Aggregate runs one request. ctx bounds the whole aggregation: when it
// ends, providers that already settled are returned and the rest are
// marked abandoned.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (Result, error) {
	months, radius, err := a.validate(req)
	if err != nil {
		return Result{}, err
	}

	location, geocoded, err := a.resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}

	q := domain.Query{
		Address:        req.Address,
		Location:       location,
		LookbackMonths: months,
		RadiusMiles:    radius,
	}

	statuses, perProvider := a.fanOut(ctx, q)

	result := Result{
		Events:      domain.MergeEvents(perProvider...),
		DataSources: dataSources(statuses),
		Providers:   statuses,
		SearchArea:  domain.SearchArea{Center: location, RadiusMiles: radius},
		Geocoded:    geocoded,
	}
	result.Message = describe(statuses)

	a.logger.Info("aggregation complete",
		"event_count", len(result.Events),
		"data_sources", strings.Join(result.DataSources, ","),
		"message", result.Message,
	)
	return result, nil
}

func (a *Aggregator) validate(req Request) (int, float64, error) {
	if req.Location != nil {
		if !req.Location.Valid() {
			return 0, 0, fmt.Errorf("coordinates %s out of range: %w", req.Location, domain.ErrInvalidRequest)
		}
	} else if req.Address == nil || req.Address.IsZero() {
		return 0, 0, fmt.Errorf("address or coordinates required: %w", domain.ErrInvalidRequest)
	}
	if req.LookbackMonths < 0 {
		return 0, 0, fmt.Errorf("lookback months %d is negative: %w", req.LookbackMonths, domain.ErrInvalidRequest)
	}
	if req.RadiusMiles < 0 {
		return 0, 0, fmt.Errorf("radius %.2f is negative: %w", req.RadiusMiles, domain.ErrInvalidRequest)
	}

	months := req.LookbackMonths
	if months == 0 {
		months = a.cfg.DefaultLookbackMonths
	}
	radius := req.RadiusMiles
	if radius == 0 {
		radius = a.cfg.DefaultRadiusMiles
	}
	return months, radius, nil
}

func (a *Aggregator) resolve(ctx context.Context, req Request) (domain.Coordinates, *domain.GeocodingResult, error) {
	if req.Location != nil {
		return *req.Location, nil, nil
	}
	if a.geocoder == nil {
		return domain.Coordinates{}, nil, fmt.Errorf("no geocoder configured: %w", domain.ErrAddressNotFound)
	}

	result, err := a.geocoder.Geocode(ctx, *req.Address)
	if err != nil {
		return domain.Coordinates{}, nil, fmt.Errorf("resolve address: %w", err)
	}
	if !result.Found() {
		return domain.Coordinates{}, nil, fmt.Errorf("resolve address %q: %w", req.Address.SingleLine(), domain.ErrAddressNotFound)
	}
	return result.Coordinates(), &result, nil
}

type outcome struct {
	index  int
	status domain.ProviderStatus
	events []domain.StormEvent
}

// fanOut runs every configured provider in its own goroutine and collects
// until all settle or ctx ends.
func (a *Aggregator) fanOut(ctx context.Context, q domain.Query) ([]domain.ProviderStatus, [][]domain.StormEvent) {
	statuses := make([]domain.ProviderStatus, len(a.providers))
	perProvider := make([][]domain.StormEvent, len(a.providers))

	// Buffered so late providers never block after the collector leaves.
	results := make(chan outcome, len(a.providers))
	pending := 0
	for i, p := range a.providers {
		statuses[i] = domain.ProviderStatus{Name: p.Name(), State: domain.ProviderNotConfigured}
		if !p.IsConfigured() {
			continue
		}
		statuses[i].State = domain.ProviderAbandoned
		pending++
		go func() {
			results <- a.runProvider(ctx, i, p, q)
		}()
	}

collect:
	for pending > 0 {
		select {
		case o := <-results:
			statuses[o.index] = o.status
			perProvider[o.index] = o.events
			pending--
		case <-ctx.Done():
			break collect
		}
	}

	// Counted here, once per call, so a provider that settles after the
	// request deadline is recorded as abandoned only.
	for _, s := range statuses {
		if s.State == domain.ProviderNotConfigured {
			continue
		}
		a.metrics.ProviderRequests.WithLabelValues(s.Name, string(s.State)).Inc()
		if s.State == domain.ProviderAbandoned {
			a.logger.Warn("request deadline reached before provider settled", "provider", s.Name)
		}
	}
	return statuses, perProvider
}

type fetchResult struct {
	payload domain.RawProviderPayload
	err     error
}

// runProvider calls one provider under its own deadline. The select guard
// returns on the deadline even if the provider ignores its context.
func (a *Aggregator) runProvider(ctx context.Context, index int, p domain.EventProvider, q domain.Query) outcome {
	name := p.Name()
	status := domain.ProviderStatus{Name: name}

	pctx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fetchResult{err: fmt.Errorf("provider panic: %v", rec)}
			}
		}()
		payload, err := p.FetchEvents(pctx, q)
		done <- fetchResult{payload: payload, err: err}
	}()

	var events []domain.StormEvent
	select {
	case r := <-done:
		switch {
		case r.err != nil && pctx.Err() != nil:
			status.State = domain.ProviderTimeout
			a.logger.Warn("provider timed out", "provider", name, "error", r.err)
		case r.err != nil:
			status.State = domain.ProviderFailed
			a.logger.Warn("provider failed", "provider", name, "error", r.err)
		default:
			payload := r.payload
			if payload.Provider == "" {
				payload.Provider = name
			}
			if !payload.Search.Valid() {
				payload.Search = q.Location
			}
			normalized := domain.Normalize(payload)
			events = domain.WithinRadius(normalized, q.Location, q.RadiusMiles)
			if dropped := len(normalized) - len(events); dropped > 0 {
				a.logger.Debug("dropped events outside search radius", "provider", name, "dropped", dropped, "radius_miles", q.RadiusMiles)
			}
			status.State = domain.ProviderOK
			status.EventCount = len(events)
			a.metrics.ProviderEvents.WithLabelValues(name).Add(float64(len(events)))
			a.logger.Debug("provider settled", "provider", name, "reports", len(payload.Reports), "event_count", len(events))
		}
	case <-pctx.Done():
		status.State = domain.ProviderTimeout
		a.logger.Warn("provider timed out", "provider", name, "error", pctx.Err())
	}

	a.metrics.ProviderDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return outcome{index: index, status: status, events: events}
}

func dataSources(statuses []domain.ProviderStatus) []string {
	sources := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.State == domain.ProviderOK {
			sources = append(sources, s.Name)
		}
	}
	return sources
}

var stateNotes = map[domain.ProviderState]string{
	domain.ProviderNotConfigured: "not configured",
	domain.ProviderFailed:        "unavailable",
	domain.ProviderTimeout:       "timed out",
	domain.ProviderAbandoned:     "did not respond in time",
}

// describe summarizes data-source degradation for the caller.
func describe(statuses []domain.ProviderStatus) string {
	if len(statuses) == 0 {
		return "No storm data providers are configured."
	}

	var ok, notes []string
	configured := 0
	for _, s := range statuses {
		if s.State != domain.ProviderNotConfigured {
			configured++
		}
		if s.State == domain.ProviderOK {
			ok = append(ok, s.Name)
			continue
		}
		notes = append(notes, s.Name+" "+stateNotes[s.State])
	}

	switch {
	case configured == 0:
		return "No storm data providers are configured."
	case len(notes) == 0:
		return "All storm data providers responded."
	case len(ok) == 0:
		return "No storm data available; " + strings.Join(notes, "; ") + "."
	default:
		return joinNames(ok) + " data only; " + strings.Join(notes, "; ") + "."
	}
}

func joinNames(names []string) string {
	if len(names) <= 1 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// ProviderInfo describes one wired storm data provider.
type ProviderInfo struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Inventory lists the providers in merge order with their configuration
// state, without calling them.
func (a *Aggregator) Inventory() []ProviderInfo {
	out := make([]ProviderInfo, len(a.providers))
	for i, p := range a.providers {
		out[i] = ProviderInfo{Name: p.Name(), Configured: p.IsConfigured()}
	}
	return out
}
