package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingFloatRe matches the numeric prefix a lenient float parse accepts,
// e.g. "0.9 (est.)" -> "0.9".
var leadingFloatRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// isAbsentString reports whether s carries no value: empty, "null" or "nan".
func isAbsentString(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan")
}

// scalarString renders a scalar property value as text. Nested objects,
// arrays, booleans and absent values report false.
func scalarString(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return scalarString(float64(x))
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		return "", false
	}
	if isAbsentString(s) {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// stringField returns the first present value among keys.
func stringField(props map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := scalarString(props[k]); ok {
			return s, true
		}
	}
	return "", false
}

// stringOr returns the first present value among keys, or def.
func stringOr(props map[string]any, def string, keys ...string) string {
	if s, ok := stringField(props, keys...); ok {
		return s
	}
	return def
}

// ParseCoordinate strictly parses a coordinate value. Numeric strings with a
// decimal comma are accepted; anything non-finite is rejected.
func ParseCoordinate(v any) (float64, bool) {
	s, ok := scalarString(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseLenientFloat parses the leading numeric prefix of a value, the way a
// browser's parseFloat does. A decimal comma is treated as a point.
func parseLenientFloat(v any) (float64, bool) {
	s, ok := scalarString(v)
	if !ok {
		return 0, false
	}
	m := leadingFloatRe.FindString(strings.ReplaceAll(s, ",", "."))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
