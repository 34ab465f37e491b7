package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"curator/models"

	"github.com/BurntSushi/toml"
)

// FeedConfig represents one feed source from TOML
type FeedConfig struct {
	ID          string   `toml:"id"`
	URL         string   `toml:"url"`
	DisplayName string   `toml:"display_name"`
	Category    string   `toml:"category"`
	Enabled     bool     `toml:"enabled"`
	Keywords    []string `toml:"keywords,omitempty"` // Overrides the category keyword list
	MaxArticles int      `toml:"max_articles"`
}

// Config represents the top-level configuration
type Config struct {
	Keywords map[string][]string `toml:"keywords"`
	Feeds    []FeedConfig        `toml:"feeds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the configuration back to disk. The registry calls this
// whenever an operator adds, edits or removes a feed source.
func SaveConfig(path string, config *Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks a feed source before it is admitted to the registry.
func (f FeedConfig) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return &models.ValidationError{Field: "id", Reason: "is required"}
	}
	if strings.TrimSpace(f.DisplayName) == "" {
		return &models.ValidationError{Field: "display_name", Reason: "is required"}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &models.ValidationError{Field: "category", Reason: "is required"}
	}
	if strings.TrimSpace(f.URL) == "" {
		return &models.ValidationError{Field: "url", Reason: "is required"}
	}
	parsed, err := url.Parse(f.URL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return &models.ValidationError{Field: "url", Reason: "must be an absolute URL"}
	}
	if f.MaxArticles <= 0 {
		return &models.ValidationError{Field: "max_articles", Reason: "must be positive"}
	}
	return nil
}

// DefaultConfig returns the built-in categories with their keyword lists and
// a starter set of feed sources. Used when no config file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Keywords: map[string][]string{
			string(models.CategoryTech): {
				"artificial intelligence", "machine learning", "llm",
				"open source", "programming", "startup", "cloud",
			},
			string(models.CategoryBusiness): {
				"acquisition", "funding", "ipo", "earnings", "layoffs",
				"venture capital",
			},
			string(models.CategoryScience): {
				"research", "study", "discovery", "climate", "space",
				"quantum",
			},
			string(models.CategorySecurity): {
				"vulnerability", "breach", "ransomware", "exploit",
				"zero-day", "phishing",
			},
		},
		Feeds: []FeedConfig{
			{
				ID:          "hn-frontpage",
				URL:         "https://hnrss.org/frontpage",
				DisplayName: "Hacker News",
				Category:    string(models.CategoryTech),
				Enabled:     true,
				MaxArticles: 20,
			},
			{
				ID:          "ars-technica",
				URL:         "https://feeds.arstechnica.com/arstechnica/index",
				DisplayName: "Ars Technica",
				Category:    string(models.CategoryTech),
				Enabled:     true,
				MaxArticles: 20,
			},
		},
	}
}
