package web

import (
	"embed"
	"fmt"
	"html/template"
)

// Embed the 'templates' directory.
// The path is relative to this file (internal/web/web.go).
//
//go:embed templates
var Assets embed.FS

// Helper for templates
var funcMap = template.FuncMap{
	"mul": func(a, b float32) float32 { return a * b },
}

// Pages holds one parsed template set per page. Each set is the shared base
// layout plus that page's blocks, parsed separately to avoid block collisions.
type Pages struct {
	Home   *template.Template
	Search *template.Template
}

// ParsePages builds the page templates from the embedded filesystem.
func ParsePages() (*Pages, error) {
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(Assets, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	page := func(file string) (*template.Template, error) {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		t, err = t.ParseFS(Assets, "templates/"+file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		return t, nil
	}

	p := &Pages{}
	if p.Home, err = page("home.html"); err != nil {
		return nil, err
	}
	if p.Search, err = page("search.html"); err != nil {
		return nil, err
	}
	return p, nil
}
