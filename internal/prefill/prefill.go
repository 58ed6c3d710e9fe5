// Package prefill turns raw label text into a matched note form. It owns the
// scope bookkeeping the matcher leaves to its callers: a changed country
// clears the region and farm, a changed region clears the farm.
package prefill

import (
	"strings"

	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
)

// Field is one form input and what it matched.
type Field struct {
	Input string               `json:"input"`
	Match *matcher.MatchResult `json:"match"`
}

// Attribute is the value stored on a note: the match when there is one,
// otherwise the text as typed.
func (f Field) Attribute() models.Attribute {
	if f.Match != nil {
		return models.Attribute{ID: f.Match.ID, Name: f.Match.Name}
	}
	return models.Attribute{Name: strings.TrimSpace(f.Input)}
}

func (f Field) id() string {
	if f.Match == nil {
		return ""
	}
	return f.Match.ID
}

func (f Field) name() string {
	if f.Match == nil {
		return ""
	}
	return f.Match.Name
}

// Form holds the matched attribute fields of a note being written.
type Form struct {
	m *matcher.Matcher

	Country Field `json:"country"`
	Region  Field `json:"region"`
	Farm    Field `json:"farm"`
	Variety Field `json:"variety"`
	Process Field `json:"process"`
	Roast   Field `json:"roast"`
}

// New returns an empty form backed by m.
func New(m *matcher.Matcher) *Form {
	return &Form{m: m}
}

// FromLabel fills a form from label text, parents before children.
func FromLabel(m *matcher.Matcher, l models.LabelFields) *Form {
	f := New(m)
	f.SetCountry(l.Country)
	f.SetRegion(l.Region)
	f.SetFarm(l.Farm)
	f.SetVariety(l.Variety)
	f.SetProcess(l.Process)
	f.SetRoast(l.Roast)
	return f
}

// SetCountry matches text as a country. When the matched country differs
// from the previous one the region and farm are cleared.
func (f *Form) SetCountry(text string) {
	prev := f.Country.id()
	f.Country = Field{Input: text, Match: f.m.MatchCountry(text)}
	if f.Country.id() != prev {
		f.Region = Field{}
		f.Farm = Field{}
	}
}

// SetRegion matches text within the current country. When the matched
// region differs from the previous one the farm is cleared.
func (f *Form) SetRegion(text string) {
	prev := f.Region.name()
	f.Region = Field{Input: text, Match: f.m.MatchRegion(text, f.Country.id())}
	if f.Region.name() != prev {
		f.Farm = Field{}
	}
}

// SetFarm matches text within the current region. Farms are scoped by the
// region's display name, not its id.
func (f *Form) SetFarm(text string) {
	f.Farm = Field{Input: text, Match: f.m.MatchFarm(text, f.Region.name())}
}

func (f *Form) SetVariety(text string) {
	f.Variety = Field{Input: text, Match: f.m.MatchVariety(text)}
}

func (f *Form) SetProcess(text string) {
	f.Process = Field{Input: text, Match: f.m.MatchProcessingMethod(text)}
}

func (f *Form) SetRoast(text string) {
	f.Roast = Field{Input: text, Match: f.m.MatchRoastingLevel(text)}
}

// Set routes text to the setter for c.
func (f *Form) Set(c matcher.Category, text string) {
	switch c {
	case matcher.Country:
		f.SetCountry(text)
	case matcher.Region:
		f.SetRegion(text)
	case matcher.Farm:
		f.SetFarm(text)
	case matcher.Variety:
		f.SetVariety(text)
	case matcher.Process:
		f.SetProcess(text)
	case matcher.Roast:
		f.SetRoast(text)
	default:
		panic("prefill: unknown category " + string(c))
	}
}

// Field returns the field for c.
func (f *Form) Field(c matcher.Category) Field {
	switch c {
	case matcher.Country:
		return f.Country
	case matcher.Region:
		return f.Region
	case matcher.Farm:
		return f.Farm
	case matcher.Variety:
		return f.Variety
	case matcher.Process:
		return f.Process
	case matcher.Roast:
		return f.Roast
	}
	panic("prefill: unknown category " + string(c))
}

// NeedsReview lists the fields with input that either did not match or
// matched with low confidence.
func (f *Form) NeedsReview() []matcher.Category {
	var out []matcher.Category
	for _, c := range matcher.Categories {
		field := f.Field(c)
		if strings.TrimSpace(field.Input) == "" {
			continue
		}
		if lvl := field.Match.Level(); lvl == matcher.None || lvl == matcher.Low {
			out = append(out, c)
		}
	}
	return out
}

// ApplyTo copies the form's attributes onto n.
func (f *Form) ApplyTo(n *models.TastingNote) {
	n.Country = f.Country.Attribute()
	n.Region = f.Region.Attribute()
	n.Farm = f.Farm.Attribute()
	n.Variety = f.Variety.Attribute()
	n.Process = f.Process.Attribute()
	n.Roast = f.Roast.Attribute()
}

// Note starts a tasting note from label text.
func Note(m *matcher.Matcher, l models.LabelFields) models.TastingNote {
	n := models.TastingNote{
		CoffeeName: strings.TrimSpace(l.Name),
		Roaster:    strings.TrimSpace(l.Roaster),
		Notes:      strings.TrimSpace(l.TastingNotes),
	}
	FromLabel(m, l).ApplyTo(&n)
	return n
}
