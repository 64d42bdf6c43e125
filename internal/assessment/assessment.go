// Package assessment composes aggregation, scoring, hot-zone ranking and
// narrative generation into one report-ready Assessment.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-intel-service/internal/aggregator"
	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/hotzone"
	"github.com/couchcryptid/storm-intel-service/internal/narrative"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
	"github.com/couchcryptid/storm-intel-service/internal/scoring"
)

// Request is one assessment job. Either Address or Location is required.
// Bounds or TerritoryID narrow the hot-zone search; without them zones are
// ranked inside the aggregation radius.
type Request struct {
	RequestID      string               `json:"request_id,omitempty"`
	Address        *domain.AddressParts `json:"address,omitempty"`
	Location       *domain.Coordinates  `json:"location,omitempty"`
	LookbackMonths int                  `json:"lookback_months,omitempty"`
	RadiusMiles    float64              `json:"radius_miles,omitempty"`
	Bounds         *domain.GeoBounds    `json:"bounds,omitempty"`
	TerritoryID    string               `json:"territory_id,omitempty"`
	IncludeHTML    bool                 `json:"include_html,omitempty"`
}

// Aggregator gathers storm events for a location.
type Aggregator interface {
	Aggregate(ctx context.Context, req aggregator.Request) (aggregator.Result, error)
}

// Assessor builds assessments.
type Assessor struct {
	aggregator Aggregator
	scorer     *scoring.Calculator
	zones      *hotzone.Engine
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates an Assessor. A nil clock means real time.
func New(agg Aggregator, scorer *scoring.Calculator, zones *hotzone.Engine, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Assessor{
		aggregator: agg,
		scorer:     scorer,
		zones:      zones,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Assess runs one request end to end. An address no geocoder can place is
// reported as StatusAddressNotFound, not as an error; invalid requests
// return an error wrapping domain.ErrInvalidRequest.
func (a *Assessor) Assess(ctx context.Context, req Request) (domain.Assessment, error) {
	start := time.Now()
	out, err := a.assess(ctx, req)
	a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		a.metrics.Assessments.WithLabelValues("invalid").Inc()
	case err != nil:
		a.metrics.Assessments.WithLabelValues("error").Inc()
	default:
		a.metrics.Assessments.WithLabelValues(string(out.Status)).Inc()
	}
	return out, err
}

func (a *Assessor) assess(ctx context.Context, req Request) (domain.Assessment, error) {
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	logger := a.logger.With("request_id", id)

	// Resolve explicit hot-zone areas first so a bad rectangle or unknown
	// territory is rejected before any provider is called.
	var zoneBounds *domain.GeoBounds
	if req.Bounds != nil || req.TerritoryID != "" {
		b, err := a.zones.Bounds(ctx, hotzone.Area{Bounds: req.Bounds, TerritoryID: req.TerritoryID})
		if err != nil {
			return domain.Assessment{}, fmt.Errorf("request %s: %w", id, err)
		}
		zoneBounds = &b
	}

	result, err := a.aggregator.Aggregate(ctx, aggregator.Request{
		Address:        req.Address,
		Location:       req.Location,
		LookbackMonths: req.LookbackMonths,
		RadiusMiles:    req.RadiusMiles,
	})
	if errors.Is(err, domain.ErrAddressNotFound) {
		logger.Info("address not found", "error", err)
		return domain.Assessment{
			RequestID:   id,
			Status:      domain.StatusAddressNotFound,
			Address:     req.Address,
			Events:      []domain.StormEvent{},
			DataSources: []string{},
			Message:     "Address not found. Check the street, city, state and ZIP and try again.",
			GeneratedAt: a.clock.Now().UTC(),
		}, nil
	}
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("request %s: %w", id, err)
	}

	score := a.scorer.Score(result.Events)

	area := hotzone.Area{Bounds: zoneBounds}
	if zoneBounds == nil {
		center := result.SearchArea.Center
		area = hotzone.Area{Center: &center, RadiusMiles: result.SearchArea.RadiusMiles}
	}
	zones, err := a.zones.HotZones(ctx, area, result.Events)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("request %s: %w", id, err)
	}

	in := narrativeInput(req, result, score)
	story := &domain.Narrative{
		Full:      narrative.Generate(in),
		Executive: narrative.ExecutiveSummary(in),
	}
	if req.IncludeHTML {
		html, err := narrative.RenderHTML(story.Full)
		if err != nil {
			return domain.Assessment{}, fmt.Errorf("request %s: %w", id, err)
		}
		story.HTML = html
	}

	logger.Info("assessment complete",
		"event_count", len(result.Events),
		"score", score.Score,
		"risk_level", score.RiskLevel,
		"zone_count", len(zones),
	)

	return domain.Assessment{
		RequestID:   id,
		Status:      domain.StatusOK,
		Address:     req.Address,
		Geocoded:    result.Geocoded,
		SearchArea:  result.SearchArea,
		Events:      nonNil(result.Events),
		DataSources: result.DataSources,
		Providers:   result.Providers,
		Message:     result.Message,
		Score:       &score,
		HotZones:    zones,
		Narrative:   story,
		GeneratedAt: a.clock.Now().UTC(),
	}, nil
}

// PrimaryStorm picks the event a report leads with: the largest hail, ties
// going to the most recent; without hail, the most recent event.
func PrimaryStorm(events []domain.StormEvent) (domain.StormEvent, bool) {
	if len(events) == 0 {
		return domain.StormEvent{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		bs, es := best.HailInches(), e.HailInches()
		switch {
		case es > bs:
			best = e
		case es == bs && e.Date.After(best.Date):
			best = e
		}
	}
	return best, true
}

func narrativeInput(req Request, result aggregator.Result, score domain.DamageScore) narrative.Input {
	in := narrative.Input{
		Address:     displayAddress(req, result),
		TotalEvents: len(result.Events),
		SevereCount: score.Factors.SeverityDistribution.Severe,
		RadiusMiles: result.SearchArea.RadiusMiles,
	}

	primary, ok := PrimaryStorm(result.Events)
	if !ok {
		return in
	}
	in.StormDate = primary.Date
	in.MaxHailSize = primary.HailInches()

	wind, nearby := 0, 0
	for _, e := range result.Events {
		if e.Kind == domain.KindWind {
			wind++
		}
		if e.ID != primary.ID && e.Date.Equal(primary.Date) {
			nearby++
		}
	}
	in.WindEvents = &wind
	in.NearbyReports = &nearby
	return in
}

func displayAddress(req Request, result aggregator.Result) string {
	if req.Address != nil && !req.Address.IsZero() {
		return req.Address.SingleLine()
	}
	if result.Geocoded != nil && result.Geocoded.FormattedAddress != "" {
		return result.Geocoded.FormattedAddress
	}
	c := result.SearchArea.Center
	return fmt.Sprintf("the location at %.4f, %.4f", c.Lat, c.Lng)
}

func nonNil(events []domain.StormEvent) []domain.StormEvent {
	if events == nil {
		return []domain.StormEvent{}
	}
	return events
}
