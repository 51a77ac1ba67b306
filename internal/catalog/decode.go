// Package catalog loads and normalizes the static reference datasets: the
// knowledge taxonomy, games, careers, videos and student progress records.
//
// Raw documents may be JSON or YAML and may hold a collection either as a bare
// array or wrapped in an object under a conventional key. Field values are
// coerced leniently; only the collection shape itself is strict.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownShape is returned when a document is neither a bare array nor an
// object wrapping an array under the expected key.
var ErrUnknownShape = errors.New("unknown collection shape")

// Shape describes how a collection is laid out in a raw document.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBareArray
	ShapeWrapped
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare-array"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Conventional wrapper keys.
const (
	KeyUsers       = "users"
	KeyGames       = "games"
	KeyCareers     = "careers"
	KeyVideos      = "videos"
	KeyDisciplines = "disciplines"
	KeyCases       = "cases"
)

// DecodeCollection extracts the item list from a generic document.
func DecodeCollection(doc any, key string) ([]any, Shape, error) {
	switch v := doc.(type) {
	case []any:
		return v, ShapeBareArray, nil
	case map[string]any:
		if items, ok := v[key].([]any); ok {
			return items, ShapeWrapped, nil
		}
		return nil, ShapeUnknown, fmt.Errorf("%w: object has no %q array", ErrUnknownShape, key)
	default:
		return nil, ShapeUnknown, fmt.Errorf("%w: got %T", ErrUnknownShape, doc)
	}
}

// ParseDifficulty maps a numeric or categorical difficulty to 1..3.
// Unrecognized values default to 1.
func ParseDifficulty(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 1
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "beginner", "easy", "low":
			return 1
		case "core", "medium", "moderate", "normal":
			return 2
		case "challenge", "challenging", "hard", "difficult":
			return 3
		}
		if n, ok := parseLeadingInt(s); ok {
			return n
		}
		return 1
	case bool:
		return 1
	}
	if n, ok := coerceInt(raw); ok {
		return n
	}
	return 1
}

// coerceInt converts numbers, numeric strings and booleans to an int.
// Floats are truncated. Strings must be numeric as a whole, so "2abc" fails.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case float32:
		return coerceInt(float64(n))
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return coerceInt(f)
	}
	return 0, false
}

// parseGrade keeps numeric grades as given and reads labels such as "3rd" up
// to the first non-digit.
func parseGrade(v any) (float64, bool) {
	switch g := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		n, ok := parseLeadingInt(strings.TrimSpace(g))
		return float64(n), ok
	}
	return coerceFloat(v)
}

func intOr(v any, fallback int) int {
	if n, ok := coerceInt(v); ok {
		return n
	}
	return fallback
}

// coerceFloat converts numbers, numeric strings and booleans to a float64.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return coerceFloat(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func floatOr(v any, fallback float64) float64 {
	if f, ok := coerceFloat(v); ok {
		return f
	}
	return fallback
}

// coerceString renders ids and labels that may arrive as numbers.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// firstString returns the first non-empty string among the given keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := coerceString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// firstPresent returns the first value among keys that is not nil.
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := coerceString(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseLeadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
