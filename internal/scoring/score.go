// Package scoring turns a location's storm history into a 0–100 damage
// risk score.
//
// The score is a weighted sum of five capped terms:
//
//	event count          up to 20 points
//	largest hail         up to 30 points
//	recency              up to 25 points
//	cumulative exposure  up to 15 points
//	severity mix         up to 10 points
//
// Only hail sizes feed the size, recency and exposure terms; wind and
// tornado events count toward the event count and severity mix.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Term caps.
const (
	MaxCountPoints    = 20.0
	MaxHailPoints     = 30.0
	MaxRecencyPoints  = 25.0
	MaxExposurePoints = 15.0
	MaxSeverityPoints = 10.0
)

const (
	daysPerMonth       = 30.4375
	recentMonths       = 12
	recencyBasePoints  = 8.0
	exposureMultiplier = 1.5
	noHistorySummary   = "No significant hail history found for this location."
	severeWeight       = 3.0
	moderateWeight     = 1.5
	minorWeight        = 0.5
)

// Risk band colors.
var riskColors = map[domain.RiskLevel]string{
	domain.RiskLow:      "#22c55e",
	domain.RiskModerate: "#eab308",
	domain.RiskHigh:     "#f97316",
	domain.RiskCritical: "#dc2626",
}

// Calculator scores event lists against a clock.
type Calculator struct {
	clock clockwork.Clock
}

// NewCalculator creates a Calculator. A nil clock means real time.
func NewCalculator(clock clockwork.Clock) *Calculator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Calculator{clock: clock}
}

// Score computes the damage score for events as of now.
func (c *Calculator) Score(events []domain.StormEvent) domain.DamageScore {
	return Compute(events, c.clock.Now())
}

// Compute is the pure scoring function: the same events and now always
// give the same score.
func Compute(events []domain.StormEvent, now time.Time) domain.DamageScore {
	if len(events) == 0 {
		return domain.DamageScore{
			Score:     0,
			RiskLevel: domain.RiskLow,
			Summary:   noHistorySummary,
			Color:     riskColors[domain.RiskLow],
		}
	}

	factors := domain.ScoreFactors{EventCount: len(events)}
	var recency float64
	for _, e := range events {
		switch e.Severity {
		case domain.SeveritySevere:
			factors.SeverityDistribution.Severe++
		case domain.SeverityModerate:
			factors.SeverityDistribution.Moderate++
		default:
			factors.SeverityDistribution.Minor++
		}

		ageMonths := float64(domain.DaysBetween(e.Date, now)) / daysPerMonth
		if ageMonths <= recentMonths {
			factors.RecentEventCount++
		}

		// Wind and tornado events carry no size and take the x1 multiplier.
		size := e.HailInches()
		recency += ageWeight(ageMonths) * sizeMultiplier(size) * recencyBasePoints
		if size <= 0 {
			continue
		}
		factors.MaxHailSize = math.Max(factors.MaxHailSize, size)
		factors.CumulativeExposure += size
	}
	factors.RecencyScore = math.Min(MaxRecencyPoints, recency)

	components := domain.ScoreComponents{
		EventCount:         countPoints(factors.EventCount),
		MaxHailSize:        hailPoints(factors.MaxHailSize),
		Recency:            factors.RecencyScore,
		CumulativeExposure: math.Min(MaxExposurePoints, factors.CumulativeExposure*exposureMultiplier),
		Severity:           severityPoints(factors.SeverityDistribution),
	}

	total := components.EventCount + components.MaxHailSize + components.Recency +
		components.CumulativeExposure + components.Severity
	score := int(math.Round(total))
	score = max(0, min(100, score))

	level := RiskLevelFor(score)
	return domain.DamageScore{
		Score:      score,
		RiskLevel:  level,
		Factors:    factors,
		Components: components,
		Summary:    summarize(score, level, factors),
		Color:      riskColors[level],
	}
}

// countPoints rewards frequency with diminishing returns.
func countPoints(n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n <= 2:
		return 5 + 2.5*float64(n)
	case n <= 5:
		return 10 + 2*float64(n-2)
	case n <= 10:
		return 16 + 0.6*float64(n-5)
	default:
		return MaxCountPoints
	}
}

func hailPoints(inches float64) float64 {
	switch {
	case inches >= 2.0:
		return MaxHailPoints
	case inches >= 1.5:
		return 20
	case inches >= 1.25:
		return 15
	case inches >= 1.0:
		return 10
	case inches >= 0.75:
		return 5
	default:
		return 0
	}
}

func ageWeight(months float64) float64 {
	switch {
	case months <= 6:
		return 1.5
	case months <= 12:
		return 1.2
	case months <= 24:
		return 0.8
	default:
		return 0.5
	}
}

func sizeMultiplier(inches float64) float64 {
	switch {
	case inches >= 1.5:
		return 2
	case inches >= 1.0:
		return 1.5
	default:
		return 1
	}
}

func severityPoints(d domain.SeverityDistribution) float64 {
	pts := float64(d.Severe)*severeWeight + float64(d.Moderate)*moderateWeight + float64(d.Minor)*minorWeight
	return math.Min(MaxSeverityPoints, pts)
}

// RiskLevelFor bands a score.
func RiskLevelFor(score int) domain.RiskLevel {
	switch {
	case score >= 76:
		return domain.RiskCritical
	case score >= 51:
		return domain.RiskHigh
	case score >= 26:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}

func summarize(score int, level domain.RiskLevel, f domain.ScoreFactors) string {
	events := "events"
	if f.EventCount == 1 {
		events = "event"
	}
	s := fmt.Sprintf("%s risk (%d/100): %d storm %s on record", level, score, f.EventCount, events)
	if f.MaxHailSize > 0 {
		s += fmt.Sprintf(", largest hail %.2f\"", f.MaxHailSize)
	}
	if f.RecentEventCount > 0 {
		s += fmt.Sprintf(", %d in the last 12 months", f.RecentEventCount)
	}
	if f.SeverityDistribution.Severe > 0 {
		s += fmt.Sprintf(", %d severe", f.SeverityDistribution.Severe)
	}
	return s + "."
}
