package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases text and collapses runs of non-alphanumerics into
// single dashes, matching the slugs produced by the ingestion pipeline.
// "St. Petersburg" -> "st-petersburg".
func Slugify(text string) string {
	var b strings.Builder

	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// NormalizeStateCode uppercases and trims a two-letter region code, returning
// "" for anything that is not two letters.
func NormalizeStateCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}
