package matcher

import "fmt"

// Level buckets a confidence score for display.
type Level string

const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
	None   Level = "none"
)

const (
	highConfidence   = 90
	mediumConfidence = 80
)

// LevelOf returns the display bucket for a 0-100 confidence.
func LevelOf(confidence int) Level {
	switch {
	case confidence >= highConfidence:
		return High
	case confidence >= mediumConfidence:
		return Medium
	default:
		return Low
	}
}

// FormatConfidence renders a confidence as a percentage, e.g. "88%".
func FormatConfidence(confidence int) string {
	return fmt.Sprintf("%d%%", confidence)
}

// Level returns the bucket of r, or None for a nil result.
func (r *MatchResult) Level() Level {
	if r == nil {
		return None
	}
	return LevelOf(r.Confidence)
}

// Exact reports whether r matched an alias verbatim.
func (r *MatchResult) Exact() bool {
	return r != nil && r.Confidence == 100
}

// Label is the name shown to users: "에티오피아 (Ethiopia)", or just the
// name when there is no separate English name.
func (r *MatchResult) Label() string {
	if r == nil {
		return ""
	}
	if r.EnglishName == "" || r.EnglishName == r.Name {
		return r.Name
	}
	return fmt.Sprintf("%s (%s)", r.Name, r.EnglishName)
}

// Describe summarises r on one line.
func Describe(r *MatchResult) string {
	if r == nil {
		return "no match"
	}
	return fmt.Sprintf("%s · %s · %s", r.Label(), FormatConfidence(r.Confidence), r.Level())
}
