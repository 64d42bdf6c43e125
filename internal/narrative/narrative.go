// Package narrative turns aggregated storm data into report prose.
//
// Output is a pure function of Input: identical inputs produce
// byte-identical strings, so reports can be regenerated and diffed.
package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Input is everything the templates read.
type Input struct {
	Address        string
	StormDate      time.Time
	MaxHailSize    float64
	TotalEvents    int
	SevereCount    int
	WindEvents     *int
	NearbyReports  *int
	StormDirection *string
	StormSpeed     *float64
	RadiusMiles    float64
}

type descriptor struct {
	minInches float64
	label     string
}

// NWS hail size chart, largest first.
var hailDescriptors = []descriptor{
	{4.50, "softball-sized"},
	{4.00, "grapefruit-sized"},
	{3.00, "teacup-sized"},
	{2.75, "baseball-sized"},
	{2.50, "tennis ball-sized"},
	{2.00, "hen egg-sized"},
	{1.75, "golf ball-sized"},
	{1.50, "ping pong ball-sized"},
	{1.25, "half dollar-sized"},
	{1.00, "quarter-sized"},
	{0.88, "nickel-sized"},
	{0.75, "penny-sized"},
	{0.50, "marble-sized"},
	{0.25, "pea-sized"},
}

// damagingHail is the size at which roofing damage becomes likely.
const damagingHail = 1.0

// HailDescriptor compares a hail size to an everyday object.
func HailDescriptor(inches float64) string {
	for _, d := range hailDescriptors {
		if inches >= d.minInches {
			return d.label
		}
	}
	return "small"
}

// FormatDate renders a calendar date with the New York zone suffix in
// effect on that day, e.g. "July 4, 2024 EDT".
func FormatDate(t time.Time) string {
	local := t.In(domain.ReferenceZone)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, domain.ReferenceZone)
	suffix := "EST"
	if noon.IsDST() {
		suffix = "EDT"
	}
	return noon.Format("January 2, 2006") + " " + suffix
}

// Generate returns the full narrative as blank-line separated paragraphs.
func Generate(in Input) string {
	radius := formatMiles(in.RadiusMiles)
	if in.TotalEvents == 0 {
		return fmt.Sprintf("No storm events were recorded within %s of %s during the review period. "+
			"Storm data providers returned no hail, wind or tornado reports for this area.", radius, in.Address)
	}

	var opening strings.Builder
	date := FormatDate(in.StormDate)
	if in.MaxHailSize > 0 {
		fmt.Fprintf(&opening, "On %s, a severe weather event impacted the area surrounding %s. "+
			"Storm reports indicate hail up to %.2f inches in diameter (%s) within %s of the property.",
			date, in.Address, in.MaxHailSize, HailDescriptor(in.MaxHailSize), radius)
	} else {
		fmt.Fprintf(&opening, "On %s, severe weather impacted the area surrounding %s. "+
			"No measurable hail was reported within %s of the property.", date, in.Address, radius)
	}
	if in.StormDirection != nil && in.StormSpeed != nil {
		fmt.Fprintf(&opening, " The storm tracked %s at approximately %.0f mph.", *in.StormDirection, *in.StormSpeed)
	} else if in.StormDirection != nil {
		fmt.Fprintf(&opening, " The storm tracked %s.", *in.StormDirection)
	}

	var history strings.Builder
	fmt.Fprintf(&history, "A total of %s %s recorded within %s of the property during the review period, %d of which %s classified as severe.",
		plural(in.TotalEvents, "storm event", "storm events"), wasWere(in.TotalEvents), radius, in.SevereCount, wasWere(in.SevereCount))
	if in.WindEvents != nil && *in.WindEvents > 0 {
		fmt.Fprintf(&history, " %s involved damaging winds.", plural(*in.WindEvents, "event", "events"))
	}
	if in.NearbyReports != nil && *in.NearbyReports > 0 {
		fmt.Fprintf(&history, " %s from nearby observers corroborate the storm activity.", plural(*in.NearbyReports, "report", "reports"))
	}

	var closing string
	if in.MaxHailSize >= damagingHail || in.SevereCount > 0 {
		closing = "Hail and wind of this magnitude are capable of damaging roofing, siding, gutters and windows. " +
			"A professional inspection of the property is recommended to document any storm-related damage."
	} else {
		closing = "The recorded activity is below the level typically associated with roof damage. " +
			"A professional inspection is still recommended to confirm the condition of the roof and exterior."
	}

	return opening.String() + "\n\n" + history.String() + "\n\n" + closing
}

// ExecutiveSummary is the one-paragraph reduction of Generate.
func ExecutiveSummary(in Input) string {
	radius := formatMiles(in.RadiusMiles)
	if in.TotalEvents == 0 {
		return fmt.Sprintf("No storm activity on record within %s of %s.", radius, in.Address)
	}

	var b strings.Builder
	if in.MaxHailSize > 0 {
		fmt.Fprintf(&b, "%s: hail up to %.2f inches (%s) near %s.",
			FormatDate(in.StormDate), in.MaxHailSize, HailDescriptor(in.MaxHailSize), in.Address)
	} else {
		fmt.Fprintf(&b, "%s: severe weather near %s.", FormatDate(in.StormDate), in.Address)
	}
	fmt.Fprintf(&b, " %s within %s, %d severe.", plural(in.TotalEvents, "event", "events"), radius, in.SevereCount)
	if in.MaxHailSize >= damagingHail || in.SevereCount > 0 {
		b.WriteString(" Inspection recommended.")
	} else {
		b.WriteString(" Inspection advised to confirm condition.")
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

func formatMiles(m float64) string {
	if m == float64(int(m)) {
		return plural(int(m), "mile", "miles")
	}
	return fmt.Sprintf("%.1f miles", m)
}
