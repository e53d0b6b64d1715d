package entity

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ParseCount normalizes human-readable metric strings like "1.5M" or "10K"
// to integers. Thousands separators are stripped and k/m/b suffixes applied
// to the numeric prefix, truncating toward zero. Returns ok=false for empty
// or unparseable input; it never panics.
func ParseCount(text string) (int64, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, ",", "")

	suffixes := []struct {
		unit string
		mult float64
	}{
		{"k", 1e3},
		{"m", 1e6},
		{"b", 1e9},
	}
	for _, s := range suffixes {
		if strings.Contains(text, s.unit) {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(text, s.unit, ""), 64); err == nil {
				return int64(v * s.mult), true
			}
			// fall through to the digit scan when the prefix isn't a clean number
			break
		}
	}

	if match := numberPattern.FindString(text); match != "" {
		if v, err := strconv.ParseFloat(match, 64); err == nil {
			return int64(v), true
		}
	}

	return 0, false
}

// CountOf coerces the loosely typed values vendor payloads carry (JSON
// numbers decode as float64, some actors report counts as strings) into an
// integer count.
func CountOf(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		return ParseCount(n)
	case nil:
		return 0, false
	default:
		return 0, false
	}
}
