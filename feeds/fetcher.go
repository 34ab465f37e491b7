package feeds

import (
	"context"
	"strings"
	"time"

	"curator/config"
	"curator/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

// Add Prometheus metrics
var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curator_feed_fetch_attempts_total",
		Help: "The total number of feed fetch attempts",
	})

	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_feed_fetch_errors_total",
		Help: "The total number of failed feed fetches",
	}, []string{"source"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "curator_feed_fetch_duration_seconds",
		Help:    "Duration of individual feed fetches",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // Start at 50ms, double each bucket, 10 buckets
	})
)

const (
	defaultFetchTimeout = 5 * time.Second
	fetchMaxRetries     = 2
	placeholderTitle    = "Untitled article"
)

// Parser is the slice of gofeed the fetcher needs, kept narrow so tests can
// swap in a fake.
type Parser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// Fetcher retrieves one feed source and turns its items into normalized,
// relevance-filtered articles.
type Fetcher struct {
	parser  Parser
	timeout time.Duration
}

func NewFetcher(parser Parser) *Fetcher {
	if parser == nil {
		parser = gofeed.NewParser()
	}
	return &Fetcher{parser: parser, timeout: defaultFetchTimeout}
}

// WithTimeout overrides the per-fetch timeout.
func (f *Fetcher) WithTimeout(timeout time.Duration) *Fetcher {
	f.timeout = timeout
	return f
}

// Fetch pulls one feed and returns the articles that pass keyword filtering.
// A nil keyword list with filtering enabled matches nothing; pass
// disableFiltering to accept every item. Network and parse failures come
// back as *models.FetchError; the caller decides whether that matters.
func (f *Fetcher) Fetch(ctx context.Context, source config.FeedConfig, keywords []string, disableFiltering bool) ([]models.Article, error) {
	fetchAttempts.Inc()
	start := time.Now()

	feed, err := f.parse(ctx, source.URL)
	fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		fetchErrors.WithLabelValues(source.ID).Inc()
		return nil, &models.FetchError{SourceID: source.ID, URL: source.URL, Err: err}
	}

	items := feed.Items
	if len(items) > source.MaxArticles {
		// Keep feed order; the pipeline sorts by recency later.
		items = items[:source.MaxArticles]
	}

	var articles []models.Article
	for _, item := range items {
		article, ok := normalize(item, source)
		if !ok {
			continue
		}

		if disableFiltering {
			articles = append(articles, article)
			continue
		}

		matched := MatchedKeywords(article.Title+" "+article.Description, keywords)
		if len(matched) == 0 {
			continue
		}
		article.MatchedKeywords = matched
		articles = append(articles, article)
	}

	log.WithFields(log.Fields{
		"source":   source.ID,
		"items":    len(items),
		"accepted": len(articles),
	}).Debug("Fetched feed")

	return articles, nil
}

// parse runs the feed parser under the fetch timeout, retrying transient
// failures a couple of times before giving up on the source.
func (f *Fetcher) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	var feed *gofeed.Feed
	err := backoff.Retry(func() error {
		var err error
		feed, err = f.parser.ParseURLWithContext(feedURL, ctx)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, fetchMaxRetries), ctx))

	return feed, err
}

// normalize maps one raw feed item onto an Article. Items without a link are
// dropped: the canonical URL is the article's identity for deduplication and
// for the persisted-membership check, so a keyless item cannot be tracked.
func normalize(item *gofeed.Item, source config.FeedConfig) (models.Article, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		log.WithFields(log.Fields{
			"source": source.ID,
			"title":  item.Title,
		}).Debug("Dropping feed item without a link")
		return models.Article{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = placeholderTitle
	}

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = strings.TrimSpace(item.Content)
	}

	rawContent := strings.TrimSpace(item.Content)
	if rawContent == "" {
		rawContent = description
	}

	publishedAt := time.Now()
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	var imageURL string
	if item.Image != nil {
		imageURL = item.Image.URL
	}

	return models.Article{
		Title:       title,
		Description: description,
		URL:         link,
		SourceName:  source.DisplayName,
		PublishedAt: publishedAt,
		Category:    source.Category,
		RawContent:  rawContent,
		ImageURL:    imageURL,
	}, true
}
