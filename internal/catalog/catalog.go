package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// The built-in reference data. A file named by CATALOG_PATH replaces it.
//
//go:embed data/catalog.yaml
var defaultYAML []byte

// Entity is one item of a flat catalog (country, variety, process, roast level).
type Entity struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	EnglishName string   `yaml:"english_name" json:"englishName"`
	Aliases     []string `yaml:"aliases" json:"aliases"`
}

// Scope is an ordered list of child names under one parent key.
type Scope struct {
	Key   string   `yaml:"scope" json:"scope"`
	Names []string `yaml:"names" json:"names"`
}

// Data is the on-disk shape of a catalog.
type Data struct {
	Countries   []Entity `yaml:"countries"`
	Varieties   []Entity `yaml:"varieties"`
	Processes   []Entity `yaml:"processes"`
	RoastLevels []Entity `yaml:"roast_levels"`
	Regions     []Scope  `yaml:"regions"`
	Farms       []Scope  `yaml:"farms"`
}

// Catalog holds the reference lists used for matching. It is built once
// and never modified, so it can be shared between goroutines.
// Slices returned by its methods must be treated as read-only.
type Catalog struct {
	countries   []Entity
	varieties   []Entity
	processes   []Entity
	roastLevels []Entity
	regions     scoped
	farms       scoped
}

// New validates d and builds a Catalog from a copy of it.
func New(d Data) (*Catalog, error) {
	var c Catalog
	var err error

	if c.countries, err = buildEntities("countries", d.Countries); err != nil {
		return nil, err
	}
	if c.varieties, err = buildEntities("varieties", d.Varieties); err != nil {
		return nil, err
	}
	if c.processes, err = buildEntities("processes", d.Processes); err != nil {
		return nil, err
	}
	if c.roastLevels, err = buildEntities("roast_levels", d.RoastLevels); err != nil {
		return nil, err
	}
	if c.regions, err = buildScoped("regions", d.Regions); err != nil {
		return nil, err
	}
	if c.farms, err = buildScoped("farms", d.Farms); err != nil {
		return nil, err
	}
	if err := checkFarmScopes(c.regions, c.farms); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Parse builds a Catalog from YAML bytes.
func Parse(b []byte) (*Catalog, error) {
	return Read(bytes.NewReader(b))
}

// Read builds a Catalog from a YAML stream.
func Read(r io.Reader) (*Catalog, error) {
	var d Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return New(d)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at '%s': %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func (c *Catalog) Countries() []Entity   { return c.countries }
func (c *Catalog) Varieties() []Entity   { return c.varieties }
func (c *Catalog) Processes() []Entity   { return c.processes }
func (c *Catalog) RoastLevels() []Entity { return c.roastLevels }

// Regions returns the regions of a country, or nil for an unknown id.
func (c *Catalog) Regions(countryID string) []string { return c.regions.children(countryID) }

// AllRegions returns every region, in country order.
func (c *Catalog) AllRegions() []string { return c.regions.all }

// HasRegions reports whether countryID is a known region scope.
func (c *Catalog) HasRegions(countryID string) bool { return c.regions.has(countryID) }

// Farms returns the farms listed under the exact region name, or nil.
func (c *Catalog) Farms(regionName string) []string { return c.farms.children(regionName) }

// AllFarms returns every farm, in region order.
func (c *Catalog) AllFarms() []string { return c.farms.all }

// HasFarms reports whether regionName is a known farm scope.
func (c *Catalog) HasFarms(regionName string) bool { return c.farms.has(regionName) }

// RegionScopes returns the country ids that have regions, in catalog order.
func (c *Catalog) RegionScopes() []string { return c.regions.keys }

// FarmScopes returns the region names that have farms, in catalog order.
func (c *Catalog) FarmScopes() []string { return c.farms.keys }

// Slugify lowercases name and replaces each run of characters that are
// neither letters nor digits with a single underscore.
func Slugify(name string) string {
	var b strings.Builder
	inRun := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}
	return b.String()
}

func buildEntities(list string, in []Entity) ([]Entity, error) {
	out := make([]Entity, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, e := range in {
		if e.ID == "" {
			return nil, fmt.Errorf("%s[%d]: missing id", list, i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%s: duplicate id %q", list, e.ID)
		}
		seen[e.ID] = true
		if e.Name == "" {
			return nil, fmt.Errorf("%s[%s]: missing name", list, e.ID)
		}
		if e.EnglishName == "" {
			e.EnglishName = e.Name
		}
		e.Aliases = aliasSet(e)
		out = append(out, e)
	}
	return out, nil
}

// aliasSet puts id, name and english name first, then the listed aliases,
// dropping blanks and case-insensitive duplicates.
func aliasSet(e Entity) []string {
	candidates := append([]string{e.ID, e.Name, e.EnglishName}, e.Aliases...)
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, a := range candidates {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

type scoped struct {
	keys  []string
	byKey map[string][]string
	all   []string
}

func buildScoped(list string, in []Scope) (scoped, error) {
	s := scoped{byKey: make(map[string][]string, len(in))}
	for i, sc := range in {
		if sc.Key == "" {
			return scoped{}, fmt.Errorf("%s[%d]: missing scope", list, i)
		}
		if _, dup := s.byKey[sc.Key]; dup {
			return scoped{}, fmt.Errorf("%s: duplicate scope %q", list, sc.Key)
		}
		names := make([]string, 0, len(sc.Names))
		for _, n := range sc.Names {
			if strings.TrimSpace(n) == "" {
				return scoped{}, fmt.Errorf("%s[%s]: blank name", list, sc.Key)
			}
			names = append(names, n)
		}
		s.keys = append(s.keys, sc.Key)
		s.byKey[sc.Key] = names
		s.all = append(s.all, names...)
	}
	return s, nil
}

// checkFarmScopes rejects farm scopes that name no region.
func checkFarmScopes(regions, farms scoped) error {
	known := make(map[string]bool, len(regions.all))
	for _, r := range regions.all {
		known[r] = true
	}
	for _, k := range farms.keys {
		if !known[k] {
			return fmt.Errorf("farms: scope %q is not a region name", k)
		}
	}
	return nil
}

func (s scoped) children(key string) []string { return s.byKey[key] }

func (s scoped) has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}
