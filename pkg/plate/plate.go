package plate

import (
	"strings"
	"unicode"
)

const (
	minLen = 2
	maxLen = 12
)

// Normalize strips spaces, dashes and dots from a license plate and uppercases
// the rest, so "ab-123 cd" and "AB123CD" key the same vehicle.
func Normalize(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Valid reports whether a normalized plate has a plausible shape: 2-12
// characters, letters and digits only, at least one of each class not required
// since diplomatic and vanity plates vary.
func Valid(value string) bool {
	if len(value) < minLen || len(value) > maxLen {
		return false
	}
	for _, r := range value {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
