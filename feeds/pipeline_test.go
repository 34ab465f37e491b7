package feeds_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"curator/config"
	"curator/feeds"
	"curator/models"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T, cfg *config.Config) *feeds.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.toml")
	require.NoError(t, config.SaveConfig(path, cfg))

	registry, err := feeds.LoadRegistry(path)
	require.NoError(t, err)
	require.Equal(t, feeds.OriginFile, registry.Origin())
	return registry
}

func twoSourceConfig() *config.Config {
	return &config.Config{
		Keywords: map[string][]string{
			"tech": {"go", "rust"},
		},
		Feeds: []config.FeedConfig{
			{
				ID:          "feed-a",
				URL:         "https://a.example/rss",
				DisplayName: "Feed A",
				Category:    "tech",
				Enabled:     true,
				MaxArticles: 10,
			},
			{
				ID:          "feed-b",
				URL:         "https://b.example/rss",
				DisplayName: "Feed B",
				Category:    "tech",
				Enabled:     true,
				MaxArticles: 10,
			},
		},
	}
}

func TestFetchAllDeduplicatesFirstWins(t *testing.T) {
	now := time.Now()

	parser := newFakeParser()
	parser.feeds["https://a.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("go release", "https://news.example/u1", now.Add(-1*time.Hour)),
		item("rust release", "https://news.example/u2", now.Add(-2*time.Hour)),
	}}
	parser.feeds["https://b.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("rust release syndicated", "https://news.example/u2", now.Add(-2*time.Hour)),
		item("go conference", "https://news.example/u3", now.Add(-3*time.Hour)),
	}}

	registry := testRegistry(t, twoSourceConfig())
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)

	urls := lo.Map(articles, func(a models.Article, _ int) string { return a.URL })
	assert.Equal(t, []string{
		"https://news.example/u1",
		"https://news.example/u2",
		"https://news.example/u3",
	}, urls)

	// The duplicate keeps feed A's copy, the first one encountered.
	u2, _ := lo.Find(articles, func(a models.Article) bool {
		return a.URL == "https://news.example/u2"
	})
	assert.Equal(t, "Feed A", u2.SourceName)
}

func TestFetchAllSortsByRecency(t *testing.T) {
	now := time.Now()

	parser := newFakeParser()
	parser.feeds["https://a.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("old go story", "https://news.example/old", now.Add(-48*time.Hour)),
		item("fresh go story", "https://news.example/fresh", now),
	}}
	parser.feeds["https://b.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("middling rust story", "https://news.example/mid", now.Add(-24*time.Hour)),
	}}

	registry := testRegistry(t, twoSourceConfig())
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 3)

	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i].PublishedAt.After(articles[i-1].PublishedAt),
			"articles must be sorted by publishedAt descending")
	}
	assert.Equal(t, "https://news.example/fresh", articles[0].URL)
}

func TestFetchAllCapsOutput(t *testing.T) {
	now := time.Now()

	var items []*gofeed.Item
	for i := 0; i < 80; i++ {
		items = append(items, item(
			fmt.Sprintf("go story %d", i),
			fmt.Sprintf("https://news.example/%d", i),
			now.Add(-time.Duration(i)*time.Minute),
		))
	}

	cfg := twoSourceConfig()
	cfg.Feeds = cfg.Feeds[:1]
	cfg.Feeds[0].MaxArticles = 100

	parser := newFakeParser()
	parser.feeds["https://a.example/rss"] = &gofeed.Feed{Items: items}

	registry := testRegistry(t, cfg)
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, feeds.MaxAggregatedArticles)
}

func TestFetchAllToleratesFailingSource(t *testing.T) {
	now := time.Now()

	parser := newFakeParser()
	parser.errs["https://a.example/rss"] = errors.New("dns failure")
	parser.feeds["https://b.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("go survives", "https://news.example/u1", now),
	}}

	registry := testRegistry(t, twoSourceConfig())
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://news.example/u1", articles[0].URL)
}

func TestFetchAllSkipsDisabledSources(t *testing.T) {
	now := time.Now()

	cfg := twoSourceConfig()
	cfg.Feeds[1].Enabled = false

	parser := newFakeParser()
	parser.feeds["https://a.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("go story", "https://news.example/u1", now),
	}}

	registry := testRegistry(t, cfg)
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Zero(t, parser.calls["https://b.example/rss"])
}

func TestFetchAllKeywordOverrides(t *testing.T) {
	now := time.Now()

	parser := newFakeParser()
	parser.feeds["https://a.example/rss"] = &gofeed.Feed{Items: []*gofeed.Item{
		item("zig release", "https://news.example/u1", now),
		item("go release", "https://news.example/u2", now),
	}}

	cfg := twoSourceConfig()
	cfg.Feeds = cfg.Feeds[:1]

	registry := testRegistry(t, cfg)
	pipeline := feeds.NewPipeline(registry, feeds.NewFetcher(parser), feeds.PipelineOptions{
		KeywordOverrides: map[string][]string{"tech": {"zig"}},
	})

	articles, err := pipeline.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://news.example/u1", articles[0].URL)
}
