// Package hotzone clusters storm events into fixed-size grid cells and
// ranks the cells for canvassing.
package hotzone

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

const (
	// CellMiles is the side of one grid cell.
	CellMiles = 5.0
	// MaxZones caps how many zones a request returns.
	MaxZones = 10
	// NoiseFloor is the intensity at or below which a cell is dropped.
	NoiseFloor = 20

	cellDegrees     = CellMiles / domain.MilesPerDegreeLat
	recencyDays     = 90
	recencyWeight   = 0.40
	severityWeight  = 0.35
	frequencyWeight = 0.25
	frequencyFull   = 10
	minCosLat       = 0.01
)

// Area selects where to look. Bounds wins over TerritoryID, which wins over
// Center with RadiusMiles.
type Area struct {
	Bounds      *domain.GeoBounds   `json:"bounds,omitempty"`
	TerritoryID string              `json:"territory_id,omitempty"`
	Center      *domain.Coordinates `json:"center,omitempty"`
	RadiusMiles float64             `json:"radius_miles,omitempty"`
}

// IsZero reports whether no area selector is set.
func (a Area) IsZero() bool {
	return a.Bounds == nil && a.TerritoryID == "" && a.Center == nil
}

// TerritoryStore resolves named territories to their rectangles.
type TerritoryStore interface {
	Territory(ctx context.Context, id string) (domain.GeoBounds, error)
}

// Engine ranks hot zones for an area.
type Engine struct {
	territories TerritoryStore
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewEngine creates an Engine. territories may be nil when no territory
// file is configured; a nil clock means real time.
func NewEngine(territories TerritoryStore, clock clockwork.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{territories: territories, clock: clock, logger: logger}
}

// HotZones resolves area to a rectangle and clusters events inside it.
func (e *Engine) HotZones(ctx context.Context, area Area, events []domain.StormEvent) ([]domain.HotZone, error) {
	bounds, err := e.Bounds(ctx, area)
	if err != nil {
		return nil, err
	}
	zones := Cluster(events, bounds, e.clock.Now())
	e.logger.Debug("hot zones ranked", "event_count", len(events), "zone_count", len(zones))
	return zones, nil
}

// Bounds resolves an Area to its rectangle.
func (e *Engine) Bounds(ctx context.Context, area Area) (domain.GeoBounds, error) {
	switch {
	case area.Bounds != nil:
		if err := area.Bounds.Validate(); err != nil {
			return domain.GeoBounds{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		return *area.Bounds, nil
	case area.TerritoryID != "":
		if e.territories == nil {
			return domain.GeoBounds{}, fmt.Errorf("territory %q: no territory store: %w", area.TerritoryID, domain.ErrInvalidRequest)
		}
		b, err := e.territories.Territory(ctx, area.TerritoryID)
		if err != nil {
			return domain.GeoBounds{}, fmt.Errorf("resolve territory: %w", err)
		}
		return b, nil
	case area.Center != nil:
		if !area.Center.Valid() || area.RadiusMiles <= 0 {
			return domain.GeoBounds{}, fmt.Errorf("center %s radius %.2f: %w", area.Center, area.RadiusMiles, domain.ErrInvalidRequest)
		}
		return domain.BoundsAround(*area.Center, area.RadiusMiles), nil
	default:
		return domain.GeoBounds{}, fmt.Errorf("bounds, territory or center required: %w", domain.ErrInvalidRequest)
	}
}

type cellKey struct {
	lat, lng int
}

func (k cellKey) id() string {
	return fmt.Sprintf("zone-%d_%d", k.lat, k.lng)
}

// Cells are CellMiles square. Latitude rows are a fixed step; each row's
// longitude step widens by 1/cos(row latitude) so a cell stays CellMiles
// wide east to west.
func keyFor(lat, lng float64) cellKey {
	row := int(math.Round(lat / cellDegrees))
	return cellKey{lat: row, lng: int(math.Round(lng / lngStep(row)))}
}

func lngStep(row int) float64 {
	c := math.Cos(float64(row) * cellDegrees * math.Pi / 180)
	return cellDegrees / math.Max(c, minCosLat)
}

func (k cellKey) center() domain.Coordinates {
	return domain.Coordinates{
		Lat: float64(k.lat) * cellDegrees,
		Lng: float64(k.lng) * lngStep(k.lat),
	}
}

// Cluster is the pure ranking over one event snapshot: identical events,
// bounds and now always give identical zones in identical order.
func Cluster(events []domain.StormEvent, bounds domain.GeoBounds, now time.Time) []domain.HotZone {
	cells := make(map[cellKey][]domain.StormEvent)
	for _, ev := range events {
		if !bounds.Contains(ev.Latitude, ev.Longitude) {
			continue
		}
		k := keyFor(ev.Latitude, ev.Longitude)
		cells[k] = append(cells[k], ev)
	}

	zones := make([]domain.HotZone, 0, len(cells))
	for k, members := range cells {
		z := buildZone(k, members, now)
		if z.Intensity <= NoiseFloor {
			continue
		}
		zones = append(zones, z)
	}

	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Intensity != zones[j].Intensity {
			return zones[i].Intensity > zones[j].Intensity
		}
		return zones[i].ID < zones[j].ID
	})
	if len(zones) > MaxZones {
		zones = zones[:MaxZones]
	}
	return zones
}

func buildZone(k cellKey, members []domain.StormEvent, now time.Time) domain.HotZone {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].Date.Equal(members[j].Date) {
			return members[i].Date.After(members[j].Date)
		}
		return members[i].ID < members[j].ID
	})

	var maxHail, sumHail float64
	hailCount := 0
	for _, ev := range members {
		if size := ev.HailInches(); size > 0 {
			maxHail = math.Max(maxHail, size)
			sumHail += size
			hailCount++
		}
	}

	last := members[0].Date
	center := k.center()
	intensity := Intensity(domain.DaysBetween(last, now), maxHail, len(members))

	z := domain.HotZone{
		ID:             k.id(),
		CenterLat:      center.Lat,
		CenterLng:      center.Lng,
		Intensity:      intensity,
		EventCount:     len(members),
		LastEventDate:  last,
		Recommendation: Recommendation(intensity),
		RadiusMiles:    CellMiles / 2,
		Events:         members,
	}
	if hailCount > 0 {
		avg := sumHail / float64(hailCount)
		z.AvgHailSize = &avg
		z.MaxHailSize = &maxHail
	}
	return z
}

// Intensity blends the recency, severity and frequency sub-scores of one
// cell into 0–100.
func Intensity(daysSinceLast int, maxHail float64, eventCount int) int {
	v := RecencyScore(daysSinceLast)*recencyWeight +
		SeverityScore(maxHail)*severityWeight +
		FrequencyScore(eventCount)*frequencyWeight
	return int(math.Round(v))
}

// RecencyScore falls linearly from 100 today to 0 at 90 days.
func RecencyScore(days int) float64 {
	return math.Max(0, 100-float64(days)/recencyDays*100)
}

// SeverityScore bands the largest hail in a cell.
func SeverityScore(maxHail float64) float64 {
	switch {
	case maxHail >= 2.0:
		return 100
	case maxHail >= 1.5:
		return 80
	case maxHail >= 1.0:
		return 60
	case maxHail >= 0.75:
		return 40
	default:
		return 20
	}
}

// FrequencyScore saturates at ten events.
func FrequencyScore(n int) float64 {
	return math.Min(100, float64(n)/frequencyFull*100)
}

// Recommendation maps an intensity to canvassing advice.
func Recommendation(intensity int) string {
	switch {
	case intensity >= 80:
		return "HOT ZONE - Canvass immediately, damage is fresh and severe"
	case intensity >= 60:
		return "Strong Area - Schedule canvassing this week"
	case intensity >= 40:
		return "Moderate Activity - Include in the regular canvassing rotation"
	default:
		return "Low Priority - Monitor for new storm activity"
	}
}
