// Package extract turns captured acquisition state into leads. The primary
// path parses structured network payloads; the fallback path parses rendered
// markup through per-field selector chains.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	digitsPattern = regexp.MustCompile(`\d[\d,.]*`)

	phoneBoilerplate = []string{
		"phone:", "telephone:", "tel:", "call us", "call now", "mobile:", "fax:",
	}
)

// NormalizePhone strips known boilerplate phrases and every character except
// digits and a leading plus sign.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "tel:")
	for _, phrase := range phoneBoilerplate {
		lower := strings.ToLower(s)
		if idx := strings.Index(lower, phrase); idx >= 0 {
			s = s[:idx] + s[idx+len(phrase):]
		}
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseRating extracts the first numeric token from a rating fragment
// ("4.5 stars", "4,5") as a float. Fragments without a number yield 0.
func ParseRating(raw string) float64 {
	m := numberPattern.FindString(raw)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseRatingCount extracts the digits of a review-count fragment such as
// "(1,234)" and returns them as text.
func ParseRatingCount(raw string) string {
	m := digitsPattern.FindString(raw)
	if m == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range m {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
