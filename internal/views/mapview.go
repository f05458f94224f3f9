package views

import (
	"context"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// DefaultHeatmapSampleThreshold is the subset size above which the heat
// layer keeps every second point.
const DefaultHeatmapSampleThreshold = 3000

const (
	markerSize         = 24
	criticalMarkerSize = 30
	heatWeightFactor   = 1.5
)

// Marker is one map pin.
type Marker struct {
	ID       string          `json:"id"`
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Date     string          `json:"date,omitempty"`
	Severity domain.Severity `json:"severity"`
	Color    string          `json:"color"`
	Icon     string          `json:"icon"`
	Size     int             `json:"size"`
	HasVideo bool            `json:"has_video"`
}

// HeatPoint is one weighted heatmap sample.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Map builds markers and heat points for the map view.
type Map struct {
	sampleThreshold int
	markers         []Marker
	heat            []HeatPoint
}

// NewMap creates a map view. A threshold of zero or less uses the default.
func NewMap(sampleThreshold int) *Map {
	if sampleThreshold <= 0 {
		sampleThreshold = DefaultHeatmapSampleThreshold
	}
	return &Map{sampleThreshold: sampleThreshold}
}

func (m *Map) Name() string { return "map" }

func (m *Map) Render(_ context.Context, events []domain.Event) error {
	m.markers = make([]Marker, 0, len(events))
	for _, e := range events {
		sev := e.Severity()
		size := markerSize
		if sev == domain.SeverityCritical {
			size = criticalMarkerSize
		}
		m.markers = append(m.markers, Marker{
			ID:       e.ID,
			Lat:      e.Lat,
			Lon:      e.Lon,
			Title:    e.Title,
			Type:     e.Type,
			Date:     e.Date,
			Severity: sev,
			Color:    Color(sev),
			Icon:     Icon(e.Type),
			Size:     size,
			HasVideo: e.Video != "",
		})
	}

	step := 1
	if len(events) > m.sampleThreshold {
		step = 2
	}
	m.heat = make([]HeatPoint, 0, len(events)/step+1)
	for i := 0; i < len(events); i += step {
		e := events[i]
		m.heat = append(m.heat, HeatPoint{Lat: e.Lat, Lon: e.Lon, Weight: e.IntensityNorm * heatWeightFactor})
	}
	return nil
}

// Markers returns the markers from the last render.
func (m *Map) Markers() []Marker { return m.markers }

// Heat returns the heat points from the last render.
func (m *Map) Heat() []HeatPoint { return m.heat }
