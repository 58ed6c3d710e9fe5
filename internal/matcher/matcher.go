package matcher

import (
	"errors"
	"fmt"
	"strings"

	"mspro-labs/brew-notes/internal/catalog"
	"mspro-labs/brew-notes/internal/similarity"
)

// DefaultMinConfidence is the lowest score accepted as a match.
const DefaultMinConfidence = 70

// Category names a list of reference values a label field is matched against.
type Category string

const (
	Country Category = "country"
	Variety Category = "variety"
	Process Category = "process"
	Roast   Category = "roast"
	Region  Category = "region"
	Farm    Category = "farm"
)

// Categories lists every category in form order.
var Categories = []Category{Country, Region, Farm, Variety, Process, Roast}

// ErrUnknownCategory is returned by ParseCategory for unrecognised names.
var ErrUnknownCategory = errors.New("unknown category")

var categoryAliases = map[string]Category{
	"country":           Country,
	"origin":            Country,
	"variety":           Variety,
	"varietal":          Variety,
	"process":           Process,
	"processing":        Process,
	"processing_method": Process,
	"roast":             Roast,
	"roasting_level":    Roast,
	"roast_level":       Roast,
	"region":            Region,
	"farm":              Farm,
}

// ParseCategory converts user input such as "processing" to a Category.
func ParseCategory(s string) (Category, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Hierarchical reports whether matches in c are narrowed by a parent scope.
func (c Category) Hierarchical() bool {
	return c == Region || c == Farm
}

// MatchResult is the best reference value found for an input.
type MatchResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
	Confidence  int    `json:"confidence"`
}

// Options tunes a Matcher.
type Options struct {
	// MinConfidence applies to every category without an explicit threshold.
	MinConfidence int
	// Thresholds overrides MinConfidence per category.
	Thresholds map[Category]int
}

// Matcher finds the closest catalog entry for free text. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	cat        *catalog.Catalog
	thresholds map[Category]int
}

// New returns a Matcher over cat using the default threshold.
func New(cat *catalog.Catalog) *Matcher {
	return NewWithOptions(cat, Options{})
}

// NewWithOptions returns a Matcher over cat.
func NewWithOptions(cat *catalog.Catalog, opts Options) *Matcher {
	if cat == nil {
		panic("matcher: nil catalog")
	}
	floor := opts.MinConfidence
	if floor <= 0 {
		floor = DefaultMinConfidence
	}
	thresholds := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		thresholds[c] = floor
		if t, ok := opts.Thresholds[c]; ok {
			thresholds[c] = t
		}
	}
	return &Matcher{cat: cat, thresholds: thresholds}
}

// Catalog returns the reference data the Matcher reads from.
func (m *Matcher) Catalog() *catalog.Catalog { return m.cat }

// Threshold returns the minimum confidence for c.
func (m *Matcher) Threshold(c Category) int {
	t, ok := m.thresholds[c]
	if !ok {
		panic(fmt.Sprintf("matcher: unknown category %q", c))
	}
	return t
}

func (m *Matcher) MatchCountry(input string) *MatchResult { return m.matchFlat(Country, input) }

func (m *Matcher) MatchVariety(input string) *MatchResult { return m.matchFlat(Variety, input) }

func (m *Matcher) MatchProcessingMethod(input string) *MatchResult {
	return m.matchFlat(Process, input)
}

func (m *Matcher) MatchRoastingLevel(input string) *MatchResult { return m.matchFlat(Roast, input) }

// MatchRegion matches within the regions of countryID, or all regions when
// countryID is empty.
func (m *Matcher) MatchRegion(input, countryID string) *MatchResult {
	return m.matchHierarchical(Region, input, countryID)
}

// MatchFarm matches within the farms listed under regionName, or all farms
// when regionName is empty. regionName must be the region's display name
// exactly as it appears in the catalog.
func (m *Matcher) MatchFarm(input, regionName string) *MatchResult {
	return m.matchHierarchical(Farm, input, regionName)
}

// Match dispatches on c. scope is ignored for flat categories.
func (m *Matcher) Match(c Category, input, scope string) *MatchResult {
	if c.Hierarchical() {
		return m.matchHierarchical(c, input, scope)
	}
	return m.matchFlat(c, input)
}

func (m *Matcher) entities(c Category) []catalog.Entity {
	switch c {
	case Country:
		return m.cat.Countries()
	case Variety:
		return m.cat.Varieties()
	case Process:
		return m.cat.Processes()
	case Roast:
		return m.cat.RoastLevels()
	}
	panic(fmt.Sprintf("matcher: %q is not a flat category", c))
}

// candidates returns the names in scope. A non-empty scope that is not in
// the catalog yields no candidates.
func (m *Matcher) candidates(c Category, scope string) []string {
	switch c {
	case Region:
		if scope == "" {
			return m.cat.AllRegions()
		}
		return m.cat.Regions(scope)
	case Farm:
		if scope == "" {
			return m.cat.AllFarms()
		}
		return m.cat.Farms(scope)
	}
	panic(fmt.Sprintf("matcher: %q is not a hierarchical category", c))
}

func (m *Matcher) matchFlat(c Category, input string) *MatchResult {
	list := m.entities(c)
	if strings.TrimSpace(input) == "" {
		return nil
	}
	threshold := m.Threshold(c)

	var best *catalog.Entity
	bestScore := 0
	for i := range list {
		for _, alias := range list[i].Aliases {
			score := similarity.Score(input, alias)
			// Strictly greater: the first entity to reach a score keeps it.
			if score > bestScore && score >= threshold {
				best = &list[i]
				bestScore = score
			}
		}
	}
	if best == nil {
		return nil
	}
	return &MatchResult{
		ID:          best.ID,
		Name:        best.Name,
		EnglishName: best.EnglishName,
		Confidence:  bestScore,
	}
}

func (m *Matcher) matchHierarchical(c Category, input, scope string) *MatchResult {
	names := m.candidates(c, scope)
	if strings.TrimSpace(input) == "" {
		return nil
	}
	threshold := m.Threshold(c)

	best := -1
	bestScore := 0
	for i, name := range names {
		score := similarity.Score(input, name)
		if score > bestScore && score >= threshold {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return nil
	}
	name := names[best]
	return &MatchResult{
		ID:          catalog.Slugify(name),
		Name:        name,
		EnglishName: name,
		Confidence:  bestScore,
	}
}
