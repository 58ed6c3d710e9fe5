package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

const (
	// Exact is returned when both strings normalize to the same text.
	Exact = 100
	// Contained is returned when one normalized string contains the other.
	Contained = 85
)

// Score returns a 0-100 confidence that a and b name the same thing.
// Case and surrounding whitespace never affect the result.
func Score(a, b string) int {
	a, b = normalize(a), normalize(b)

	if a == b {
		return Exact
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return Contained
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	// ComputeDistance works on runes, so the ratio is per character.
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round((1 - float64(dist)/float64(maxLen)) * 100))
}

func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
