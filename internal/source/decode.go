package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Shape names the layout of a decoded payload.
type Shape string

const (
	ShapeGeoJSON  Shape = "geojson"
	ShapeTimeline Shape = "timeline"
)

// LoadError reports a whole-payload failure: fetch error, bad status or
// malformed JSON.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Document is a decoded payload.
type Document struct {
	Source   string
	Shape    Shape
	Records  []domain.RawRecord
	Repaired bool // bare NaN/Infinity tokens were rewritten to null
}

// Load fetches and decodes one payload. Errors are *LoadError.
func Load(ctx context.Context, f Fetcher) (*Document, error) {
	b, err := f.Fetch(ctx)
	if err != nil {
		return nil, &LoadError{Source: f.Name(), Err: err}
	}
	doc, err := Decode(b)
	if err != nil {
		return nil, &LoadError{Source: f.Name(), Err: err}
	}
	doc.Source = f.Name()
	return doc, nil
}

type geoJSON struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   *geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
}

// Decode detects the payload shape from its top-level keys ("features" for
// GeoJSON, "events" for a timeline) and converts it to raw records. A payload
// that is not valid JSON because of bare NaN tokens is repaired and retried.
func Decode(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	repaired := false
	if err := json.Unmarshal(data, &top); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) || !hasNonFiniteToken(data) {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		data = repairNonFinite(data)
		repaired = true
		top = nil
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}

	var (
		doc *Document
		err error
	)
	switch {
	case top["features"] != nil:
		doc, err = decodeGeoJSON(data)
	case top["events"] != nil:
		doc, err = decodeTimeline(data)
	default:
		return nil, errors.New("decode payload: neither features nor events present")
	}
	if err != nil {
		return nil, err
	}
	doc.Repaired = repaired
	return doc, nil
}

func decodeGeoJSON(data []byte) (*Document, error) {
	var fc geoJSON
	if err := unmarshalNumbers(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	records := make([]domain.RawRecord, len(fc.Features))
	for i, f := range fc.Features {
		records[i] = domain.RawRecord{
			Geometry:   f.Geometry.point(),
			Properties: f.Properties,
		}
	}
	return &Document{Shape: ShapeGeoJSON, Records: records}, nil
}

func decodeTimeline(data []byte) (*Document, error) {
	var tl domain.TimelineDocument
	if err := unmarshalNumbers(data, &tl); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	records := make([]domain.RawRecord, len(tl.Events))
	for i, ev := range tl.Events {
		records[i] = ev.Record()
	}
	return &Document{Shape: ShapeTimeline, Records: records}, nil
}

// point returns the [lon, lat] position of a Point geometry, or nil when
// either coordinate is missing or invalid.
func (g *geometry) point() *domain.Point {
	if g == nil || len(g.Coordinates) < 2 {
		return nil
	}
	if g.Type != "" && g.Type != "Point" {
		return nil
	}
	lon, okLon := domain.ParseCoordinate(g.Coordinates[0])
	lat, okLat := domain.ParseCoordinate(g.Coordinates[1])
	if !okLon || !okLat {
		return nil
	}
	return &domain.Point{Lat: lat, Lon: lon}
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
