package domain

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // reference and provider zones must resolve on minimal images
)

// ReferenceZone is the single timezone every event date is expressed in.
var ReferenceZone = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// ReferenceDate converts an instant to its calendar date in ReferenceZone,
// returned as midnight of that day in ReferenceZone. Zero stays zero.
func ReferenceDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	local := t.In(ReferenceZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ReferenceZone)
}

// ParseProviderTime parses value with layout in the provider's own zone
// (used when the string carries no offset) and normalizes it to a
// ReferenceZone calendar date.
func ParseProviderTime(layout, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("parse provider time: empty value")
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse provider time %q: %w", value, err)
	}
	return ReferenceDate(t), nil
}

// LookbackWindow returns the [start, end] instants covering the last months
// calendar months, ending now.
func LookbackWindow(months int) (time.Time, time.Time) {
	end := now()
	if months <= 0 {
		return end, end
	}
	return end.AddDate(0, -months, 0), end
}

// DaysBetween returns the whole days elapsed from earlier to later in
// ReferenceZone, never negative.
func DaysBetween(earlier, later time.Time) int {
	a := ReferenceDate(earlier)
	b := ReferenceDate(later)
	if !b.After(a) {
		return 0
	}
	// Dates are local midnights, so rounding absorbs DST 23h/25h days.
	return int(b.Sub(a).Hours()/24 + 0.5)
}
