package models

import (
	"fmt"
	"time"
)

// Offering holds the scraped data for a single coffee listed by a shop.
// The *ID fields are the catalog ids the free-text cells were matched to.
type Offering struct {
	URL         string
	Name        string
	Price       float64
	Origin      string
	CountryID   string
	Region      string
	Processing  string
	ProcessID   string
	Description string
	StockStatus string
}

// LabelFields are the raw values read off a bag of coffee, either typed by
// the user or extracted from a photo.
type LabelFields struct {
	Name         string `json:"name"`
	Roaster      string `json:"roaster"`
	Country      string `json:"country"`
	Region       string `json:"region"`
	Farm         string `json:"farm"`
	Variety      string `json:"variety"`
	Process      string `json:"process"`
	Roast        string `json:"roast"`
	TastingNotes string `json:"tasting_notes"`
}

// MaxRating is the top of every rating axis.
const MaxRating = 5

// Ratings scores a cup on eight axes, each from 0 to MaxRating.
type Ratings struct {
	Aroma      int `json:"aroma"`
	Flavor     int `json:"flavor"`
	Aftertaste int `json:"aftertaste"`
	Acidity    int `json:"acidity"`
	Body       int `json:"body"`
	Sweetness  int `json:"sweetness"`
	Balance    int `json:"balance"`
	Overall    int `json:"overall"`
}

// Axes returns the ratings paired with their names, in display order.
func (r Ratings) Axes() []Axis {
	return []Axis{
		{"aroma", r.Aroma},
		{"flavor", r.Flavor},
		{"aftertaste", r.Aftertaste},
		{"acidity", r.Acidity},
		{"body", r.Body},
		{"sweetness", r.Sweetness},
		{"balance", r.Balance},
		{"overall", r.Overall},
	}
}

// Axis is one named rating.
type Axis struct {
	Name  string
	Value int
}

// Validate rejects values outside 0..MaxRating.
func (r Ratings) Validate() error {
	for _, a := range r.Axes() {
		if a.Value < 0 || a.Value > MaxRating {
			return fmt.Errorf("%s rating %d out of range 0-%d", a.Name, a.Value, MaxRating)
		}
	}
	return nil
}

// Average is the mean over all eight axes.
func (r Ratings) Average() float64 {
	axes := r.Axes()
	sum := 0
	for _, a := range axes {
		sum += a.Value
	}
	return float64(sum) / float64(len(axes))
}

// Attribute is a matched catalog value as stored on a note. ID is empty when
// the text did not match anything and was kept as typed.
type Attribute struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TastingNote is one journal entry.
type TastingNote struct {
	ID          int64     `json:"id"`
	CoffeeName  string    `json:"coffee_name"`
	Roaster     string    `json:"roaster"`
	Country     Attribute `json:"country"`
	Region      Attribute `json:"region"`
	Farm        Attribute `json:"farm"`
	Variety     Attribute `json:"variety"`
	Process     Attribute `json:"process"`
	Roast       Attribute `json:"roast"`
	Ratings     Ratings   `json:"ratings"`
	Notes       string    `json:"notes"`
	OfferingURL string    `json:"offering_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmbeddingText is the text used to build a note's search vector.
func (n TastingNote) EmbeddingText() string {
	return fmt.Sprintf("Coffee Name: %s\nOrigin: %s %s %s\nVariety: %s\nProcess: %s\nRoast: %s\nTasting Notes: %s",
		n.CoffeeName, n.Country.Name, n.Region.Name, n.Farm.Name, n.Variety.Name, n.Process.Name, n.Roast.Name, n.Notes)
}
