package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimelineDocument is the TimelineJS-shaped payload, used both as a second
// input format and as the timeline view's output.
type TimelineDocument struct {
	Title  *TimelineSlide  `json:"title,omitempty"`
	Events []TimelineEvent `json:"events"`
}

// TimelineSlide is the optional title slide of a timeline document.
type TimelineSlide struct {
	Text TimelineText `json:"text"`
}

// TimelineEvent is one slide. Lat/Lon are an extension of the TimelineJS
// format; slides without them cannot be placed and are dropped on normalize.
type TimelineEvent struct {
	StartDate TimelineDate   `json:"start_date"`
	Text      TimelineText   `json:"text"`
	Group     string         `json:"group,omitempty"`
	Media     *TimelineMedia `json:"media,omitempty"`
	Lat       any            `json:"lat,omitempty"`
	Lon       any            `json:"lon,omitempty"`
	ActorCode string         `json:"actor_code,omitempty"`
	Intensity any            `json:"intensity,omitempty"`
}

// TimelineDate is a calendar date split into parts.
type TimelineDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// TimelineText holds the slide headline and body.
type TimelineText struct {
	Headline string `json:"headline"`
	Text     string `json:"text,omitempty"`
}

// TimelineMedia links a slide to a video or image.
type TimelineMedia struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// UnmarshalJSON accepts each part as a number or a numeric string, as
// TimelineJS itself does. Missing or empty parts are zero.
func (d *TimelineDate) UnmarshalJSON(b []byte) error {
	var raw struct {
		Year  json.RawMessage `json:"year"`
		Month json.RawMessage `json:"month"`
		Day   json.RawMessage `json:"day"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var err error
	if d.Year, err = datePart(raw.Year); err != nil {
		return fmt.Errorf("start_date year: %w", err)
	}
	if d.Month, err = datePart(raw.Month); err != nil {
		return fmt.Errorf("start_date month: %w", err)
	}
	if d.Day, err = datePart(raw.Day); err != nil {
		return fmt.Errorf("start_date day: %w", err)
	}
	return nil
}

func datePart(b json.RawMessage) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// String renders the date as YYYY-MM-DD, or "" when the year is missing.
func (d TimelineDate) String() string {
	if d.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Record maps a timeline slide onto the same property names a GeoJSON
// feature carries, so one normalizer handles both shapes.
func (te TimelineEvent) Record() RawRecord {
	props := map[string]any{
		"title":       te.Text.Headline,
		"description": te.Text.Text,
		"type":        te.Group,
		"date":        te.StartDate.String(),
		"lat":         te.Lat,
		"lon":         te.Lon,
		"actor_code":  te.ActorCode,
		"intensity":   te.Intensity,
	}
	if te.Media != nil {
		props["video"] = te.Media.URL
	}
	return RawRecord{Properties: props}
}
