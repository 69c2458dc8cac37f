// Package mapcommon holds small conversion helpers shared by the per-system
// mapper packages (field-value extraction, field-type inference), mirroring
// the _get_property_value/_determine_field_type helper pair duplicated in
// both the Zephyr and qTest mapper reference implementations.
package mapcommon

import (
	"strconv"
	"strings"
	"time"

	"github.com/cedricziel/migrated/internal/canonical"
)

// StringField returns source[key] as a string, or "" if absent or not a
// string.
func StringField(source map[string]any, key string) string {
	v, ok := source[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// IntField returns source[key] as an int, or 0 if absent or not numeric.
func IntField(source map[string]any, key string) int {
	n, _ := ToInt(source[key])
	return n
}

// ToInt converts common numeric JSON representations (float64, int, string)
// into an int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Upper upper-cases s for case-insensitive table lookups.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Lower lower-cases s for case-insensitive table lookups.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseTime best-effort parses a timestamp value that may arrive as an
// RFC3339 string or a millisecond epoch number; it returns the zero time if
// v is nil or unparseable.
func ParseTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		if t == "" {
			return time.Time{}
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case int:
		return time.UnixMilli(int64(t)).UTC()
	}
	return time.Time{}
}

// DetermineFieldType infers a CustomFieldType from a dynamically-typed Go
// value decoded from JSON, mirroring _determine_field_type.
func DetermineFieldType(v any) canonical.CustomFieldType {
	switch v.(type) {
	case bool:
		return canonical.FieldBoolean
	case int, int64:
		return canonical.FieldInteger
	case float64:
		return canonical.FieldFloat
	case []any, []string:
		return canonical.FieldMultiSelect
	case map[string]any:
		return canonical.FieldObject
	default:
		return canonical.FieldString
	}
}
