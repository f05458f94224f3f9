// Package domain models geolocated conflict events for the situational-awareness
// dashboard and turns untrusted raw records into canonical events.
//
// # Data Source
//
// Records arrive as static files produced by an upstream enrichment pipeline
// that exports a shared spreadsheet. Two shapes exist:
//
//	GeoJSON FeatureCollection: properties hold the raw event fields,
//	geometry.coordinates = [lon, lat].
//	TimelineJS document: {events: [{start_date: {year, month, day},
//	text: {headline, text}, group, media: {url}}]}.
//
// Both are decoded into [RawRecord] values and normalized by the same
// [Normalizer], so the rest of the system never sees the difference.
//
// # Field Conventions
//
// Any field may be absent, JSON null, or the literal string "null". The
// upstream pandas export also leaks "nan" for empty cells. All three are
// treated as absent.
//
// Dates (field "date") come in whatever format the spreadsheet author typed:
//
//	ISO          2022-02-24
//	slash        24/02/2022, 24/02/22
//	dot          24.02.2022
//	dash         24-02-2022
//	free form    24 February 2022, Feb 24 2022, 2022-02-24T05:00:00Z
//
// Day-first ordering is assumed for the numeric forms; two-digit years belong
// to the 2000s. See [DateParser] for the exact fallback chain. An empty or
// unparseable date resolves to "now", so the event still renders and sorts
// last; the event is flagged with DateUnknown.
//
// Intensity (field "intensity") is a 0–1 analyst estimate, sometimes written
// with a decimal comma ("0,8"). Missing values default to 0.2.
//
// Actor codes (field "actor_code", alternately "actor") are short uppercase
// codes such as RUS, UKR. Unknown actors are "UNK".
//
// # Severity classification
//
// Severity is derived from intensity with fixed thresholds evaluated from the
// top, inclusive lower bounds:
//
//	>= 0.8 critical | >= 0.6 high | >= 0.4 medium | otherwise low
//
// [Classify] is the single definition; map colors, chart buckets and kanban
// borders all call it.
//
// # Search
//
// Each event carries a lower-cased search blob of every scalar field. Place
// names with several transliterations (Kiev/Kyiv, Kharkov/Kharkiv, ...) are
// bridged by a [SynonymResolver]: aliases are appended to the blob when the
// canonical spelling appears in the title, and queries are expanded in both
// directions at filter time.
package domain
