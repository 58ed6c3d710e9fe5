package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/brew-notes/internal/catalog"
	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/prefill"
	"mspro-labs/brew-notes/internal/testutil"
)

func init() {
	color.NoColor = true
}

func TestMergeLabel(t *testing.T) {
	base := models.LabelFields{Name: "Kochere", Country: "Ethiopia", Process: "Washed"}
	got := mergeLabel(base, models.LabelFields{Process: "natural", TastingNotes: "peach"})
	assert.Equal(t, models.LabelFields{Name: "Kochere", Country: "Ethiopia", Process: "natural", TastingNotes: "peach"}, got)
}

func TestImageFormat(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	format, err := imageFormat(png)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	format, err = imageFormat(jpeg)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	_, err = imageFormat([]byte("just some text"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "예가체...", truncate("예가체프 코체레", 3))
}

func TestPrintForm(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	m := matcher.New(cat)

	var buf bytes.Buffer
	printForm(&buf, prefill.FromLabel(m, models.LabelFields{Country: "Ethipia", Variety: "qqqq"}))
	out := buf.String()
	assert.Contains(t, out, "에티오피아 (Ethiopia) · 88% · medium")
	assert.Contains(t, out, "no match")
	assert.Contains(t, out, "Check: [variety]")
	assert.NotContains(t, out, "region")
}

func TestPrintNote(t *testing.T) {
	var buf bytes.Buffer
	printNote(&buf, models.TastingNote{
		ID:         3,
		CoffeeName: "Kochere",
		Country:    models.Attribute{ID: "ethiopia", Name: "에티오피아"},
		Region:     models.Attribute{Name: "예가체프"},
		Ratings:    models.Ratings{Overall: 4},
		Notes:      "jasmine",
	})
	out := buf.String()
	assert.Contains(t, out, "#3 Kochere")
	assert.Contains(t, out, "에티오피아 / 예가체프")
	assert.Contains(t, out, "overall 4 (avg 0.5)")
	assert.Contains(t, out, "Notes:   jasmine")
}

func TestExtractArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		text    string
		wantErr bool
	}{
		{name: "image", args: []string{"bag.jpg"}},
		{name: "text", text: "Kenya Nyeri AA"},
		{name: "neither", wantErr: true},
		{name: "blank text", text: "  ", wantErr: true},
		{name: "both", args: []string{"bag.jpg"}, text: "Kenya", wantErr: true},
		{name: "two images", args: []string{"a.jpg", "b.jpg"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{}
			c.Flags().String("text", "", "")
			require.NoError(t, c.Flags().Set("text", tt.text))

			err := extractArgs(c, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReadLabel_Text(t *testing.T) {
	r := &testutil.LabelReader{Fields: models.LabelFields{Country: "Kenya"}}

	got, err := readLabel(context.Background(), r, "", "Kenya Nyeri AA, SL28")
	require.NoError(t, err)
	assert.Equal(t, "Kenya", got.Country)
	assert.Equal(t, []string{"Kenya Nyeri AA, SL28"}, r.Texts)
	assert.Empty(t, r.Images)
}

func TestReadLabel_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bag.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(path, png, 0600))

	r := &testutil.LabelReader{Fields: models.LabelFields{Name: "Kochere"}}
	got, err := readLabel(context.Background(), r, path, "")
	require.NoError(t, err)
	assert.Equal(t, "Kochere", got.Name)
	require.Len(t, r.Images, 1)
	assert.Equal(t, "png", r.Format)
	assert.Empty(t, r.Texts)

	_, err = readLabel(context.Background(), r, filepath.Join(t.TempDir(), "missing.jpg"), "")
	assert.Error(t, err)
}
