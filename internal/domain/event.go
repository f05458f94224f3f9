package domain

import "time"

// Placeholders used when a raw record omits a display field.
const (
	DefaultTitle     = "Event"
	DefaultType      = "Unknown"
	DefaultActorCode = "UNK"
	DefaultIntensity = 0.2
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawRecord is one untrusted input record: free-form properties plus an
// optional point geometry. Property values are whatever the JSON decoder
// produced (string, json.Number, float64, bool, nil, nested values).
type RawRecord struct {
	Geometry   *Point
	Properties map[string]any
}

// Event is the canonical, normalized representation of a record. Events are
// values and are never modified after normalization.
type Event struct {
	ID    string `json:"id"`
	Index int    `json:"index"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type"`
	Date         string `json:"date,omitempty"` // original string, kept for display
	Location     string `json:"location,omitempty"`
	Video        string `json:"video,omitempty"`
	Link         string `json:"link,omitempty"`
	BeforeImg    string `json:"before_img,omitempty"`
	AfterImg     string `json:"after_img,omitempty"`
	Confidence   string `json:"confidence,omitempty"`
	Verification string `json:"verification,omitempty"`

	Timestamp     int64   `json:"timestamp"` // ms since epoch
	DateUnknown   bool    `json:"date_unknown,omitempty"`
	IntensityNorm float64 `json:"intensity"`
	ActorCode     string  `json:"actor_code"`

	SearchBlob string `json:"-"`
}

// Severity recomputes the severity bucket from IntensityNorm.
func (e Event) Severity() Severity {
	return Classify(e.IntensityNorm)
}

// Time returns the event timestamp as a UTC time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Report summarizes one normalization pass for diagnostics.
type Report struct {
	Read          int `json:"read"`
	Kept          int `json:"kept"`
	Dropped       int `json:"dropped"`
	DateFallbacks int `json:"date_fallbacks"`
	Duplicates    int `json:"duplicates"` // events already supplied by an earlier source
}
