package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/prefill"
)

var levelColors = map[matcher.Level]*color.Color{
	matcher.High:   color.New(color.FgGreen),
	matcher.Medium: color.New(color.FgYellow),
	matcher.Low:    color.New(color.FgRed),
	matcher.None:   color.New(color.FgHiBlack),
}

var heading = color.New(color.FgCyan, color.Bold)

func printMatch(w io.Writer, c matcher.Category, input string, r *matcher.MatchResult) {
	fmt.Fprintf(w, "%-8s %-24q ", c, strings.TrimSpace(input))
	levelColors[r.Level()].Fprintln(w, matcher.Describe(r))
}

func printForm(w io.Writer, f *prefill.Form) {
	for _, c := range matcher.Categories {
		field := f.Field(c)
		if strings.TrimSpace(field.Input) == "" {
			continue
		}
		printMatch(w, c, field.Input, field.Match)
	}
	if review := f.NeedsReview(); len(review) > 0 {
		color.New(color.FgRed).Fprintf(w, "⚠️  Check: %v\n", review)
	}
}

func printNote(w io.Writer, n models.TastingNote) {
	heading.Fprintf(w, "#%d %s", n.ID, n.CoffeeName)
	if n.Roaster != "" {
		fmt.Fprintf(w, " · %s", n.Roaster)
	}
	fmt.Fprintln(w)

	origin := joinNonEmpty(" / ", n.Country.Name, n.Region.Name, n.Farm.Name)
	if origin != "" {
		fmt.Fprintf(w, "   Origin:  %s\n", origin)
	}
	if details := joinNonEmpty(" · ", n.Variety.Name, n.Process.Name, n.Roast.Name); details != "" {
		fmt.Fprintf(w, "   Details: %s\n", details)
	}
	fmt.Fprintf(w, "   Ratings: ")
	for i, a := range n.Ratings.Axes() {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s %d", a.Name, a.Value)
	}
	fmt.Fprintf(w, " (avg %.1f)\n", n.Ratings.Average())
	if n.Notes != "" {
		fmt.Fprintf(w, "   Notes:   %s\n", n.Notes)
	}
	if n.OfferingURL != "" {
		fmt.Fprintf(w, "   Shop:    %s\n", n.OfferingURL)
	}
	fmt.Fprintf(w, "   Added:   %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
