package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mspro-labs/brew-notes/internal/matcher"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath        string
	ConfigPath    string // Path to the scraper YAML config file
	CatalogPath   string // Empty means the built-in catalog
	Port          int
	MinConfidence int
}

// SiteConfig holds all target-site specific settings (from YAML)
type SiteConfig struct {
	CategoryURL        string    `yaml:"category_url"`
	Selectors          Selectors `yaml:"selectors"`
	DisallowedKeywords []string  `yaml:"disallowed_keywords"`
}

type Selectors struct {
	CookieButton         string `yaml:"cookie_button"`
	NewsletterPopup      string `yaml:"newsletter_popup"`
	ProductListWait      string `yaml:"product_list_wait"`
	ProductRow           string `yaml:"product_row"`
	Link                 string `yaml:"link"`
	Price                string `yaml:"price"`
	Origin               string `yaml:"origin"`
	Region               string `yaml:"region"`
	Processing           string `yaml:"processing"`
	StockButton          string `yaml:"stock_button"`
	StockComingSoon      string `yaml:"stock_coming_soon"`
	Description          string `yaml:"description"`
	DescriptionIsNextRow bool   `yaml:"description_is_next_row"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	cfg := AppConfig{
		DBPath:        getEnv("DB_PATH", "./local-data/notes.db"),
		ConfigPath:    getEnv("CONFIG_PATH", "config.yaml"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		Port:          8080,
		MinConfidence: matcher.DefaultMinConfidence,
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", cfg.Port); err != nil {
		return AppConfig{}, err
	}
	if cfg.MinConfidence, err = getEnvInt("MIN_CONFIDENCE", cfg.MinConfidence); err != nil {
		return AppConfig{}, err
	}
	if cfg.MinConfidence < 1 || cfg.MinConfidence > 100 {
		return AppConfig{}, fmt.Errorf("MIN_CONFIDENCE must be between 1 and 100, got %d", cfg.MinConfidence)
	}
	return cfg, nil
}

// LoadSiteConfig reads the YAML file to configure the scraper.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if cfg.CategoryURL == "" {
		return nil, fmt.Errorf("config file '%s' has no category_url", path)
	}
	if cfg.Selectors.ProductRow == "" || cfg.Selectors.Link == "" {
		return nil, fmt.Errorf("config file '%s' needs product_row and link selectors", path)
	}
	return &cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
