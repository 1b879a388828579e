package utils

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingNumber matches the numeric prefix of a string such as "23.5C" or " -4e2 ".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ToFloat64 converts various numeric types to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Supports: float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64
// and json.Number.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseFloatOrZero coerces a raw sensor field into a float64.
// Numbers pass through, strings are parsed by their leading numeric prefix, and
// anything else (nil, booleans, garbage, NaN, ±Inf) becomes 0.
func ParseFloatOrZero(v interface{}) float64 {
	if s, ok := v.(string); ok {
		return finiteOrZero(parseLeadingFloat(s))
	}
	f, ok := ToFloat64(v)
	if !ok {
		return 0
	}
	return finiteOrZero(f)
}

// IsNumeric checks if a value can be coerced to a float64 without falling back to 0.
func IsNumeric(v interface{}) bool {
	if s, ok := v.(string); ok {
		return leadingNumber.MatchString(strings.TrimSpace(s))
	}
	_, ok := ToFloat64(v)
	return ok
}

// parseLeadingFloat reads only the decimal prefix, so hex floats such as
// "0x1p4" read as 0 and "Infinity" or "NaN" as nothing.
func parseLeadingFloat(s string) float64 {
	prefix := leadingNumber.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return f
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
