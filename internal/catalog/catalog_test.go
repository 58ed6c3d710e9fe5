package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AliasInvariant(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	lists := map[string][]Entity{
		"countries":    c.Countries(),
		"varieties":    c.Varieties(),
		"processes":    c.Processes(),
		"roast_levels": c.RoastLevels(),
	}
	for name, list := range lists {
		require.NotEmpty(t, list, name)
		for _, e := range list {
			assert.Contains(t, e.Aliases, e.ID, "%s/%s", name, e.ID)
			assert.True(t, hasFold(e.Aliases, e.Name), "%s/%s name alias", name, e.ID)
			assert.True(t, hasFold(e.Aliases, e.EnglishName), "%s/%s english alias", name, e.ID)
		}
	}
}

func TestDefault_Hierarchy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Contains(t, c.Regions("ethiopia"), "예가체프")
	assert.Contains(t, c.Farms("세라도"), "다테라")
	assert.Contains(t, c.AllRegions(), "예가체프")
	assert.Contains(t, c.AllFarms(), "다테라")

	// Unknown scopes are empty, not errors.
	assert.Empty(t, c.Regions("atlantis"))
	assert.Empty(t, c.Farms("Cerrado"))
	assert.False(t, c.HasFarms("Cerrado"))
	assert.True(t, c.HasRegions("brazil"))

	// Every region scope refers to a known country.
	ids := map[string]bool{}
	for _, e := range c.Countries() {
		ids[e.ID] = true
	}
	for _, key := range c.RegionScopes() {
		assert.True(t, ids[key], "region scope %q is not a country id", key)
	}

	// Every farm scope is a literal region name.
	regions := map[string]bool{}
	for _, r := range c.AllRegions() {
		regions[r] = true
	}
	for _, key := range c.FarmScopes() {
		assert.True(t, regions[key], "farm scope %q is not a region name", key)
	}
}

func TestAllRegions_PreservesScopeOrder(t *testing.T) {
	c, err := New(Data{
		Regions: []Scope{
			{Key: "b", Names: []string{"b1", "b2"}},
			{Key: "a", Names: []string{"a1"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2", "a1"}, c.AllRegions())
	assert.Equal(t, []string{"b", "a"}, c.RegionScopes())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		data    Data
		wantErr string
	}{
		{
			name:    "missing id",
			data:    Data{Countries: []Entity{{Name: "x"}}},
			wantErr: "missing id",
		},
		{
			name:    "duplicate id",
			data:    Data{Varieties: []Entity{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}},
			wantErr: "duplicate id",
		},
		{
			name:    "missing name",
			data:    Data{Processes: []Entity{{ID: "a"}}},
			wantErr: "missing name",
		},
		{
			name:    "duplicate scope",
			data:    Data{Farms: []Scope{{Key: "r", Names: []string{"f"}}, {Key: "r"}}},
			wantErr: "duplicate scope",
		},
		{
			name: "farm scope is not a region",
			data: Data{
				Regions: []Scope{{Key: "brazil", Names: []string{"세라도"}}},
				Farms:   []Scope{{Key: "새라도", Names: []string{"다테라"}}},
			},
			wantErr: `scope "새라도" is not a region name`,
		},
		{
			name:    "blank child",
			data:    Data{Regions: []Scope{{Key: "c", Names: []string{" "}}}},
			wantErr: "blank name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_FillsAliases(t *testing.T) {
	c, err := New(Data{RoastLevels: []Entity{
		{ID: "light", Name: "라이트", Aliases: []string{"LIGHT", "", "약배전"}},
	}})
	require.NoError(t, err)

	e := c.RoastLevels()[0]
	assert.Equal(t, "라이트", e.EnglishName, "english name falls back to name")
	assert.Equal(t, []string{"light", "라이트", "약배전"}, e.Aliases)
}

func TestNew_CopiesInput(t *testing.T) {
	names := []string{"one", "two"}
	c, err := New(Data{
		Regions: []Scope{{Key: "c", Names: []string{"r"}}},
		Farms:   []Scope{{Key: "r", Names: names}},
	})
	require.NoError(t, err)

	names[0] = "changed"
	assert.Equal(t, []string{"one", "two"}, c.Farms("r"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
countries:
  - id: kenya
    name: 케냐
    english_name: Kenya
regions:
  - scope: kenya
    names: [니에리]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Countries(), 1)
	assert.Equal(t, []string{"니에리"}, c.Regions("kenya"))
	assert.Empty(t, c.Varieties())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("/nonexistent/catalog.yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("countries: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("planets:\n  - id: mars\n"))
	assert.Error(t, err, "unknown top-level keys are rejected")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Santa Barbara", "santa_barbara"},
		{"La Esmeralda (Jaramillo)", "la_esmeralda_jaramillo_"},
		{"술 데 미나스", "술_데_미나스"},
		{"세라도", "세라도"},
		{"  Finca -- El Injerto", "_finca_el_injerto"},
		{"SL28", "sl28"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func hasFold(list []string, s string) bool {
	for _, a := range list {
		if strings.EqualFold(a, s) {
			return true
		}
	}
	return false
}
