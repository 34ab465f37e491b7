package config_test

import (
	"path/filepath"
	"testing"

	"curator/config"
	"curator/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFeed() config.FeedConfig {
	return config.FeedConfig{
		ID:          "example",
		URL:         "https://example.com/rss",
		DisplayName: "Example",
		Category:    "tech",
		Enabled:     true,
		MaxArticles: 10,
	}
}

func TestFeedConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.FeedConfig)
		field  string
	}{
		{
			name:   "valid feed",
			mutate: func(f *config.FeedConfig) {},
		},
		{
			name:   "missing id",
			mutate: func(f *config.FeedConfig) { f.ID = " " },
			field:  "id",
		},
		{
			name:   "missing url",
			mutate: func(f *config.FeedConfig) { f.URL = "" },
			field:  "url",
		},
		{
			name:   "relative url",
			mutate: func(f *config.FeedConfig) { f.URL = "/feed.xml" },
			field:  "url",
		},
		{
			name:   "url without host",
			mutate: func(f *config.FeedConfig) { f.URL = "https://" },
			field:  "url",
		},
		{
			name:   "missing display name",
			mutate: func(f *config.FeedConfig) { f.DisplayName = "" },
			field:  "display_name",
		},
		{
			name:   "missing category",
			mutate: func(f *config.FeedConfig) { f.Category = "" },
			field:  "category",
		},
		{
			name:   "zero article cap",
			mutate: func(f *config.FeedConfig) { f.MaxArticles = 0 },
			field:  "max_articles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := validFeed()
			tt.mutate(&feed)

			err := feed.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.toml")

	original := config.DefaultConfig()
	require.NoError(t, config.SaveConfig(path, original))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, original.Feeds, loaded.Feeds)
	assert.Equal(t, original.Keywords, loaded.Keywords)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
