package filter

import (
	"strings"
	"time"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
)

// MatchesDateRange compares YYYY-MM-DD strings, which order the same way as
// the dates they name. A blank or unparsable setup date always passes, and an
// unparsable bound is treated as unbounded.
func MatchesDateRange(setupDate string, r DateRange) bool {
	date, ok := isoDate(setupDate)
	if !ok {
		return true
	}
	if from, ok := isoDate(r.From); ok && date < from {
		return false
	}
	if to, ok := isoDate(r.To); ok && date > to {
		return false
	}
	return true
}

// MatchesSubstring is a case-insensitive containment test. A blank needle
// matches anything, including an empty haystack.
func MatchesSubstring(haystack, needle string) bool {
	if isBlank(needle) {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func MatchesEnum(value, expected models.InspectionStatus) bool {
	if isBlank(string(expected)) {
		return true
	}
	return value == expected
}

func isoDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", false
	}
	return s, true
}
