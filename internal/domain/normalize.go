package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Severity thresholds. Hail in inches, wind in mph.
const (
	HailSevereInches   = 2.0
	HailModerateInches = 1.0
	WindSevereMPH      = 75.0
	WindModerateMPH    = 58.0
)

// kindVocabulary is checked in order; the first group with a matching term
// decides the kind.
var kindVocabulary = []struct {
	kind  EventKind
	terms []string
}{
	{KindHail, []string{"hail"}},
	{KindTornado, []string{"tornado"}},
	{KindWind, []string{"wind", "gust", "thunderstorm", "tstm", "wnd", "gst"}},
}

// Normalize maps a provider payload to canonical events. Reports whose kind
// is unrecognised, or that lack the one measurement their kind requires, are
// dropped. Output order follows input order.
func Normalize(p RawProviderPayload) []StormEvent {
	events := make([]StormEvent, 0, len(p.Reports))
	for _, r := range p.Reports {
		e, ok := normalizeReport(p.Provider, p.Search, r)
		if ok {
			events = append(events, e)
		}
	}
	return events
}

func normalizeReport(provider string, search Coordinates, r RawReport) (StormEvent, bool) {
	kind, ok := ClassifyKind(r.KindText)
	if !ok || r.Time.IsZero() {
		return StormEvent{}, false
	}

	lat, lng := search.Lat, search.Lng
	if r.Lat != nil && r.Lng != nil {
		if c := (Coordinates{Lat: *r.Lat, Lng: *r.Lng}); c.Valid() {
			lat, lng = c.Lat, c.Lng
		}
	}

	event := StormEvent{
		Date:      ReferenceDate(r.Time),
		Latitude:  lat,
		Longitude: lng,
		Kind:      kind,
		Source:    provider,
	}

	var magnitude float64
	switch kind {
	case KindHail:
		size, ok := ResolveHailSize(r.HailSizes)
		if !ok {
			return StormEvent{}, false
		}
		event.HailSize = &size
		event.Severity = ClassifyHail(size)
		magnitude = size
	case KindWind:
		if r.WindSpeed == nil || *r.WindSpeed <= 0 {
			return StormEvent{}, false
		}
		speed := *r.WindSpeed
		event.WindSpeed = &speed
		event.Severity = ClassifyWind(speed)
		magnitude = speed
	case KindTornado:
		event.Severity = SeveritySevere
	}

	event.ID = generateID(provider, kind, event, r.UpstreamID, magnitude)
	return event, true
}

// ClassifyKind matches loosely typed provider text against the kind
// vocabulary, case-insensitively.
func ClassifyKind(text string) (EventKind, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	for _, group := range kindVocabulary {
		for _, term := range group.terms {
			if strings.Contains(text, term) {
				return group.kind, true
			}
		}
	}
	return "", false
}

// ResolveHailSize picks the nearest-radius band that holds a positive size.
// Bands must be ordered nearest first.
func ResolveHailSize(bands []*float64) (float64, bool) {
	for _, b := range bands {
		if b == nil || *b <= 0 {
			continue
		}
		return normalizeHailMagnitude(*b), true
	}
	return 0, false
}

// normalizeHailMagnitude corrects hail sizes reported in hundredths of an
// inch (175 = 1.75in). No real hailstone reaches 10 inches.
func normalizeHailMagnitude(size float64) float64 {
	if size >= 10 {
		return size / 100.0
	}
	return size
}

// ClassifyHail maps a hail diameter in inches to a severity.
func ClassifyHail(inches float64) Severity {
	switch {
	case inches >= HailSevereInches:
		return SeveritySevere
	case inches >= HailModerateInches:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// ClassifyWind maps a wind speed in mph to a severity.
func ClassifyWind(mph float64) Severity {
	switch {
	case mph >= WindSevereMPH:
		return SeveritySevere
	case mph >= WindModerateMPH:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// generateID produces a deterministic ID from the event's key fields so the
// same report fetched twice collapses to one event.
func generateID(provider string, kind EventKind, e StormEvent, upstreamID string, magnitude float64) string {
	input := fmt.Sprintf("%s|%s|%s|%.4f|%.4f|%g|%s",
		provider, kind, e.Date.Format("2006-01-02"), e.Latitude, e.Longitude, magnitude, upstreamID)
	hash := sha256.Sum256([]byte(input))
	return string(kind) + "-" + hex.EncodeToString(hash[:8])
}

// MergeEvents concatenates event lists in order, dropping later events whose
// ID was already seen.
func MergeEvents(lists ...[]StormEvent) []StormEvent {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[string]struct{}, total)
	merged := make([]StormEvent, 0, total)
	for _, l := range lists {
		for _, e := range l {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			merged = append(merged, e)
		}
	}
	return merged
}
