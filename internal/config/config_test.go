package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppConfig_Defaults(t *testing.T) {
	for _, k := range []string{"DB_PATH", "CONFIG_PATH", "CATALOG_PATH", "PORT", "MIN_CONFIDENCE"} {
		t.Setenv(k, "")
	}

	cfg, err := GetAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "./local-data/notes.db", cfg.DBPath)
	assert.Equal(t, "config.yaml", cfg.ConfigPath)
	assert.Equal(t, "", cfg.CatalogPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 70, cfg.MinConfidence)
}

func TestGetAppConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("CATALOG_PATH", "/etc/catalog.yaml")
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_CONFIDENCE", "75")

	cfg, err := GetAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "/etc/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 75, cfg.MinConfidence)
}

func TestGetAppConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := GetAppConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("MIN_CONFIDENCE", "120")
	_, err = GetAppConfig()
	assert.Error(t, err)
}

func TestLoadSiteConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
category_url: https://example.com/green-coffee
selectors:
  product_row: tr.product-item
  link: a.product-item-link
  origin: td.origin
  processing: td.process
disallowed_keywords: [blend, sample]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadSiteConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/green-coffee", cfg.CategoryURL)
	assert.Equal(t, "td.process", cfg.Selectors.Processing)
	assert.Equal(t, []string{"blend", "sample"}, cfg.DisallowedKeywords)
}

func TestLoadSiteConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSiteConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("category_url: [oops"), 0600))
	_, err = LoadSiteConfig(bad)
	assert.Error(t, err)

	incomplete := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("category_url: https://example.com\n"), 0600))
	_, err = LoadSiteConfig(incomplete)
	assert.ErrorContains(t, err, "product_row")
}

func TestLoadSiteConfig_Example(t *testing.T) {
	cfg, err := LoadSiteConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Selectors.DescriptionIsNextRow)
	assert.Contains(t, cfg.DisallowedKeywords, "blend")
}
