// Package domain models storm events gathered from several independent
// weather data providers and the value objects derived from them.
//
// # Canonical Events
//
// Every provider adapter emits a [RawProviderPayload]. [Normalize] turns it into
// [StormEvent] values, the only event shape the scoring, clustering and
// narrative stages ever see. Provider field names do not travel past the
// adapter that decoded them.
//
// # Reference Timezone
//
// Providers disagree about time. The NOAA storm report inventory speaks UTC,
// the IHM marker service reports Central local time without an offset, and the
// weather timeline service reports days in the queried location's own zone.
// Two reports of the same storm must land on the same calendar day, so every
// event date is converted once by [ReferenceDate] to a midnight in
// America/New_York. Adapters call it at their boundary and nothing downstream
// reasons about provider zones.
//
// # Magnitude Encoding
//
//	Hail:    inches as a decimal. Values >= 10 reported in inches are
//	         hundredths (175 = 1.75in); the largest US hailstone on record was
//	         about 8 inches, so the threshold is safe.
//	Wind:    miles per hour.
//	Tornado: no magnitude is carried; every tornado is classified severe.
//
// Some providers report several hail estimates banded by distance from the
// property ("at location", "within 1 mile", "within 3 miles", ...). The
// nearest non-empty band wins because it describes the property best.
//
// # Severity Classification
//
//	Hail: <1.0" minor | <2.0" moderate | >=2.0" severe
//	Wind: <58 mph minor | <75 mph moderate | >=75 mph severe
//
// 58 mph is the NWS severe thunderstorm wind criterion.
//
// # Event Kinds
//
// Loosely typed provider text ("TSTM WND GST", "Hail", "Tornado") is matched
// case-insensitively against a fixed vocabulary. Hail wins over tornado, and
// tornado over wind, when several terms appear. Anything unmatched is dropped.
//
// # ID Generation
//
// Event IDs are deterministic SHA-256 prefixes of source|kind|date|lat|lng|
// magnitude, so the same report fetched twice collapses to one event.
package domain
