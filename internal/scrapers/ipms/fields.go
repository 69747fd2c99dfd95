package ipms

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The raw records are untrusted: any field may be missing, a string, a number
// or something else entirely. Nothing here fails, every helper reports
// whether it found a usable value and callers substitute a default.

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseFloatLike reads the leading number of a value, "120.50 USD" reads as 120.5.
func parseFloatLike(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		prefix := floatPrefix.FindString(strings.TrimSpace(v))
		if prefix == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(prefix, 64)
		if err != nil || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// parseIntLike reads the leading integer of a value, fractions are truncated.
func parseIntLike(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case string:
		prefix := intPrefix.FindString(strings.TrimSpace(v))
		if prefix == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(prefix)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func stringLike(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// firstString returns the first non-empty string among `keys`.
func firstString(record map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringLike(record[key]); ok {
			return s, true
		}
	}
	return "", false
}

// firstNonZeroFloat returns the first non-zero number among `keys`.
func firstNonZeroFloat(record map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := parseFloatLike(record[key]); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

func nonNegative[T int | float64](n T) T {
	if n < 0 {
		return 0
	}
	return n
}
