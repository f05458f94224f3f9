package domain

import (
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Normalizer converts raw records into canonical events. It holds no
// per-record state and may be reused across loads.
type Normalizer struct {
	dates    DateParser
	synonyms SynonymResolver
	actors   ActorClassifier
	logger   *slog.Logger
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithDateParser sets the parser used for the "date" field.
func WithDateParser(p DateParser) NormalizerOption {
	return func(n *Normalizer) { n.dates = p }
}

// WithSynonyms replaces the built-in place-name dictionary.
func WithSynonyms(r SynonymResolver) NormalizerOption {
	return func(n *Normalizer) {
		if r != nil {
			n.synonyms = r
		}
	}
}

// WithActorClassifier enables actor inference for records without an actor
// code. Without it such records get "UNK".
func WithActorClassifier(c ActorClassifier) NormalizerOption {
	return func(n *Normalizer) { n.actors = c }
}

// NewNormalizer creates a Normalizer with UTC dates and the default dictionary.
func NewNormalizer(logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		dates:    defaultDateParser,
		synonyms: DefaultDictionary(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Synonyms returns the resolver used for search blobs.
func (n *Normalizer) Synonyms() SynonymResolver {
	return n.synonyms
}

// Dates returns the parser used for event dates.
func (n *Normalizer) Dates() DateParser {
	return n.dates
}

// Normalize builds the canonical event for one record. It returns false when
// the record has no usable coordinates; such records are dropped.
func (n *Normalizer) Normalize(raw RawRecord, index int) (Event, bool) {
	props := raw.Properties
	if props == nil {
		props = map[string]any{}
	}

	lat, lon, ok := coordinates(raw)
	if !ok {
		return Event{}, false
	}

	title, hasTitle := stringField(props, "title", "headline")
	if !hasTitle {
		title = DefaultTitle
	}
	description := stringOr(props, "", "description", "text")
	location := stringOr(props, "", "location")
	date := stringOr(props, "", "date")

	ts, dateOK := n.dates.Parse(date)
	if !dateOK {
		n.logger.Debug("date fallback to now",
			"index", index,
			"date", date,
		)
	}

	event := Event{
		ID:            stringOr(props, strconv.Itoa(index), "id"),
		Index:         index,
		Lat:           lat,
		Lon:           lon,
		Title:         title,
		Description:   description,
		Type:          stringOr(props, DefaultType, "type", "group"),
		Date:          date,
		Location:      location,
		Video:         stringOr(props, "", "video"),
		Link:          stringOr(props, "", "link", "source"),
		BeforeImg:     stringOr(props, "", "before_img"),
		AfterImg:      stringOr(props, "", "after_img"),
		Confidence:    stringOr(props, "", "confidence"),
		Verification:  stringOr(props, "", "verification"),
		Timestamp:     ts,
		DateUnknown:   !dateOK,
		IntensityNorm: normalizeIntensity(props["intensity"]),
		ActorCode:     n.actorCode(props, title, description, location),
	}
	event.SearchBlob = n.searchBlob(props, lat, lon, title, hasTitle)
	return event, true
}

// NormalizeAll normalizes every record and returns the canonical collection,
// sorted ascending by timestamp with input order breaking ties.
func (n *Normalizer) NormalizeAll(records []RawRecord) ([]Event, Report) {
	report := Report{Read: len(records)}
	events := make([]Event, 0, len(records))

	for i, raw := range records {
		event, ok := n.Normalize(raw, i)
		if !ok {
			report.Dropped++
			continue
		}
		if event.DateUnknown {
			report.DateFallbacks++
		}
		events = append(events, event)
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})

	report.Kept = len(events)
	if report.Dropped > 0 {
		n.logger.Info("records dropped without coordinates", "dropped", report.Dropped, "read", report.Read)
	}
	return events, report
}

// coordinates prefers the point geometry and falls back to lat/lon
// properties. Both values must be finite.
func coordinates(raw RawRecord) (float64, float64, bool) {
	if g := raw.Geometry; g != nil && isFinite(g.Lat) && isFinite(g.Lon) {
		return g.Lat, g.Lon, true
	}
	lat, okLat := firstCoordinate(raw.Properties, "lat", "latitude")
	lon, okLon := firstCoordinate(raw.Properties, "lon", "longitude", "long")
	if !okLat || !okLon {
		return 0, 0, false
	}
	return lat, lon, true
}

func firstCoordinate(props map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := ParseCoordinate(props[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// normalizeIntensity parses the intensity leniently and clamps it to [0,1].
// Missing or unparseable values default to 0.2.
func normalizeIntensity(v any) float64 {
	f, ok := parseLenientFloat(v)
	if !ok {
		return DefaultIntensity
	}
	return math.Min(math.Max(f, 0), 1)
}

func (n *Normalizer) actorCode(props map[string]any, title, description, location string) string {
	if code, ok := stringField(props, "actor_code", "actor"); ok {
		return strings.ToUpper(code)
	}
	if n.actors != nil {
		if code := n.actors.ClassifyActor(title, description, location); code != "" {
			return strings.ToUpper(code)
		}
	}
	return DefaultActorCode
}

// searchBlob joins the lower-cased scalar values of every property, plus the
// coordinates, in key order, then appends aliases of place names found in the
// title.
func (n *Normalizer) searchBlob(props map[string]any, lat, lon float64, title string, hasTitle bool) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys)+4)
	for _, k := range keys {
		if s, ok := scalarString(props[k]); ok {
			parts = append(parts, strings.ToLower(s))
		}
	}
	parts = append(parts,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)

	if hasTitle {
		parts = append(parts, n.synonyms.AliasesIn(strings.ToLower(title))...)
	}
	return strings.Join(parts, " ")
}
