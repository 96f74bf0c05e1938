package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// VALUE COERCION — Lexical cleanup of exported cells
// ============================================================================
// Exports format counts for humans ("1,234"), so separators are stripped
// before parsing. Numeric cells that still fail to parse become 0.
// Dates are strict: a bad date is an error the loader surfaces.
// ============================================================================

// nullTokens are cell values treated as empty.
var nullTokens = map[string]bool{
	"":     true,
	"null": true,
	"nan":  true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"-":    true,
}

// IsNull reports whether a cell carries no value.
func IsNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// stripSeparators removes grouping separators ("1,234", "1 234", "1_234").
func stripSeparators(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	return s
}

// ParseRatio parses a non-negative float. Anything unusable yields 0.
func ParseRatio(s string) float64 {
	if IsNull(s) {
		return 0
	}
	f, err := strconv.ParseFloat(stripSeparators(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// MaxCount is the largest count float64 holds exactly; larger values saturate.
const MaxCount = 1 << 53

// ParseCount parses a non-negative integer count.
// Fractions are truncated ("12.0" → 12); anything unusable yields 0.
func ParseCount(s string) int {
	f := ParseRatio(s)
	if f >= MaxCount {
		return MaxCount
	}
	return int(f)
}

// ParseFlag parses a 0/1 style flag.
func ParseFlag(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "true", "t", "yes", "y":
		return true
	case "false", "f", "no", "n":
		return false
	}
	return ParseRatio(v) > 0
}

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a calendar date and truncates it to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Day drops the clock part of t, keeping its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToSnakeCase converts "Column Name" → "column_name".
func ToSnakeCase(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
