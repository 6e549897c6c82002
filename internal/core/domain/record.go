package domain

import (
	"fmt"
	"strconv"
)

// Unknown is the default returned by Record.Get when a field is missing.
// The appliance API omits or nulls fields freely, so every nested access
// goes through Get instead of indexing directly.
const Unknown = "Unknown"

// Record is a raw JSON payload from the appliance API, kept untyped because
// the breach and incident schemas vary between appliance versions.
type Record map[string]any

// Get walks a nested JSON structure by map keys (string) and slice indexes
// (int). It returns "Unknown" if any step is missing, mistyped or nil.
func (r Record) Get(fields ...any) any {
	return walk(map[string]any(r), Unknown, fields)
}

// GetOr is Get with a caller-supplied default.
func (r Record) GetOr(def any, fields ...any) any {
	return walk(map[string]any(r), def, fields)
}

func walk(v any, def any, fields []any) any {
	cur := v
	for _, field := range fields {
		switch key := field.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return def
			}
			cur, ok = m[key]
			if !ok {
				return def
			}
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return def
			}
			cur = s[key]
		default:
			return def
		}
	}
	if cur == nil || cur == "" {
		return def
	}
	return cur
}

// AsString renders a field value as a string. JSON numbers keep their
// shortest representation, so identifiers survive the float64 round trip.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// AsFloat extracts a numeric field value, or 0 when it is not a number.
func AsFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}

// AsInt64 extracts an integer field value such as a millisecond timestamp.
func AsInt64(v any) int64 {
	return int64(AsFloat(v))
}

// AsBool reports whether a field value is truthy. The appliance encodes
// flags inconsistently as booleans or numbers.
func AsBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return false
	}
}
