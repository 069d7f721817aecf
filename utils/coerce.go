package utils

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// CoerceString returns value if it is a string, otherwise defaultValue.
// An empty string is still a string and is returned as-is.
func CoerceString(value any, defaultValue string) string {
	if s, ok := value.(string); ok {
		return s
	}
	return defaultValue
}

// CoerceOptionalString returns the trimmed value when it is a non-empty string.
func CoerceOptionalString(value any) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CoerceNumber converts value to a finite float64, falling back to defaultValue
// for anything that is not numeric (nil, booleans, malformed strings, NaN, Inf).
func CoerceNumber(value any, defaultValue float64) float64 {
	if n, ok := toNumber(value); ok {
		return n
	}
	return defaultValue
}

// CoerceOptionalNumber returns nil for nil, blank strings and non-numeric input.
func CoerceOptionalNumber(value any) *float64 {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	n, ok := toNumber(value)
	if !ok {
		return nil
	}
	return &n
}

// CoerceStringArray returns a copy of value when it is a slice made only of strings.
// Any other input, including mixed slices, yields an empty slice.
func CoerceStringArray(value any) []string {
	if value == nil {
		return []string{}
	}
	if ss, ok := value.([]string); ok {
		return append([]string{}, ss...)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []string{}
	}

	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, ok := rv.Index(i).Interface().(string)
		if !ok {
			return []string{}
		}
		out = append(out, s)
	}
	return out
}

func toNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
