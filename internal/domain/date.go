package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// separatorReplacer folds the dot and dash date separators onto slashes.
var separatorReplacer = strings.NewReplacer(".", "/", "-", "/")

// DateParser turns the free-form date strings found in raw records into
// millisecond timestamps. Calendar dates are interpreted in Location (UTC
// when nil).
//
// The fallback chain, first success wins:
//  1. empty, "null" or "nan" -> now
//  2. numeric D/M/Y or Y/M/D with any of the / . - separators, time of day ignored
//  3. a generic date expression on the original string (RFC 3339, "24 February 2022", ...)
//  4. now
type DateParser struct {
	Location *time.Location
}

var defaultDateParser = DateParser{Location: time.UTC}

// ParseDate parses raw with UTC calendar dates. It always returns a finite
// timestamp; unparseable input yields the current time.
func ParseDate(raw string) int64 {
	ts, _ := defaultDateParser.Parse(raw)
	return ts
}

// Parse returns the timestamp for raw and whether it was actually parsed.
// ok is false when the "now" fallback was used.
func (p DateParser) Parse(raw string) (ts int64, ok bool) {
	s := strings.TrimSpace(raw)
	if isAbsentString(s) {
		return clock.Now().UnixMilli(), false
	}

	loc := p.location()
	if t, ok := parseNumericDate(s, loc); ok {
		return t.UnixMilli(), true
	}
	if t, ok := parseDateExpression(s, loc); ok {
		return t.UnixMilli(), true
	}
	return clock.Now().UnixMilli(), false
}

// DayStart returns the first millisecond of the calendar day named by day.
func (p DateParser) DayStart(day string) (int64, bool) {
	t, ok := p.day(day)
	if !ok {
		return 0, false
	}
	return t.UnixMilli(), true
}

// DayEnd returns the last millisecond of the calendar day named by day.
func (p DateParser) DayEnd(day string) (int64, bool) {
	t, ok := p.day(day)
	if !ok {
		return 0, false
	}
	return t.AddDate(0, 0, 1).UnixMilli() - 1, true
}

func (p DateParser) day(day string) (time.Time, bool) {
	s := strings.TrimSpace(day)
	if isAbsentString(s) {
		return time.Time{}, false
	}
	return parseNumericDate(s, p.location())
}

func (p DateParser) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// parseNumericDate applies the three-part heuristic: separators normalized to
// "/" and time of day stripped. A first part above 1900 means Y/M/D. Otherwise
// the third part is the year, D/M/Y, with a two-digit year read as 20YY.
func parseNumericDate(s string, loc *time.Location) (time.Time, bool) {
	s = separatorReplacer.Replace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var n [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return time.Time{}, false
		}
		n[i] = v
	}

	var year, month, day int
	switch {
	case n[0] > 1900:
		year, month, day = n[0], n[1], n[2]
	case len(parts[2]) == 2:
		year, month, day = 2000+n[2], n[1], n[0]
	case n[2] > 1900:
		year, month, day = n[2], n[1], n[0]
	default:
		return time.Time{}, false
	}
	return calendarDate(year, month, day, loc)
}

// calendarDate builds a date and rejects values time.Date would roll over.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// parseDateExpression hands the original string to dateparse. A panic inside
// the library counts as a parse failure.
func parseDateExpression(s string, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, loc)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
