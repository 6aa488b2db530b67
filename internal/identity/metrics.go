// internal/identity/metrics.go
package identity

import (
	"strconv"
	"strings"
)

// ParseMetric converts a compact counter string ("1.2K", "3M", "950") into an
// absolute count, truncated toward zero. Multipliers K/M/B are
// case-insensitive. Everything except digits, '.' and the multiplier letters
// is stripped before parsing; a string with no parseable digits yields 0.
func ParseMetric(text string) int64 {
	var clean strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			clean.WriteRune(r)
		case r == 'K', r == 'k', r == 'M', r == 'm', r == 'B', r == 'b':
			clean.WriteRune(r)
		}
	}

	s := clean.String()
	if s == "" {
		return 0
	}

	multiplier := float64(1)
	switch {
	case strings.ContainsAny(s, "Kk"):
		multiplier = 1_000
	case strings.ContainsAny(s, "Mm"):
		multiplier = 1_000_000
	case strings.ContainsAny(s, "Bb"):
		multiplier = 1_000_000_000
	}

	numeric := strings.TrimFunc(s, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	})
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0
	}
	return int64(value * multiplier)
}
