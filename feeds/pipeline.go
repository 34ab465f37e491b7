package feeds

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"curator/config"
	"curator/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var (
	aggregationRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curator_aggregation_runs_total",
		Help: "The total number of aggregation pipeline runs",
	})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "curator_aggregation_duration_seconds",
		Help:    "Duration of full aggregation pipeline runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

// MaxAggregatedArticles caps total pipeline output regardless of how many
// sources matched, to bound downstream cost.
const MaxAggregatedArticles = 50

// PipelineOptions tune one pipeline instance.
type PipelineOptions struct {
	// DisableFiltering accepts every feed item, bypassing keyword matching.
	DisableFiltering bool

	// KeywordOverrides replaces the configured keyword list for a category.
	KeywordOverrides map[string][]string

	// MaxArticles overrides the global output cap. Zero means the default.
	MaxArticles int
}

// Pipeline aggregates every enabled feed source into one deduplicated,
// recency-sorted article list.
type Pipeline struct {
	registry *Registry
	fetcher  *Fetcher
	opts     PipelineOptions
}

func NewPipeline(registry *Registry, fetcher *Fetcher, opts PipelineOptions) *Pipeline {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = MaxAggregatedArticles
	}
	return &Pipeline{
		registry: registry,
		fetcher:  fetcher,
		opts:     opts,
	}
}

// FetchAll fetches every enabled source concurrently, merges the results,
// deduplicates by URL (first source in registry order wins), sorts by
// publish time descending and truncates to the cap. A source that fails is
// logged and skipped; only a missing registry fails the whole run.
func (p *Pipeline) FetchAll(ctx context.Context) ([]models.Article, error) {
	if p.registry == nil {
		return nil, errors.New("pipeline has no feed registry")
	}

	aggregationRuns.Inc()
	start := time.Now()
	defer func() {
		aggregationDuration.Observe(time.Since(start).Seconds())
	}()

	sources := p.registry.Enabled()

	// Fetches are independent, so they run concurrently. Results land in a
	// per-source slot so the merged order stays deterministic (registry
	// order), which is what makes first-wins dedup reproducible.
	results := make([][]models.Article, len(sources))
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(i int, source config.FeedConfig) {
			defer wg.Done()

			keywords := p.registry.KeywordsFor(source, p.opts.KeywordOverrides)
			articles, err := p.fetcher.Fetch(ctx, source, keywords, p.opts.DisableFiltering)
			if err != nil {
				log.WithFields(log.Fields{
					"source": source.ID,
					"error":  err,
				}).Warn("Skipping feed source")
				return
			}
			results[i] = articles
		}(i, source)
	}

	wg.Wait()

	merged := lo.Flatten(results)

	// lo.UniqBy keeps the first occurrence, so duplicates from later
	// sources are dropped silently.
	deduped := lo.UniqBy(merged, func(a models.Article) string {
		return a.URL
	})

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].PublishedAt.After(deduped[j].PublishedAt)
	})

	if len(deduped) > p.opts.MaxArticles {
		deduped = deduped[:p.opts.MaxArticles]
	}

	log.WithFields(log.Fields{
		"sources":  len(sources),
		"merged":   len(merged),
		"returned": len(deduped),
		"elapsed":  time.Since(start),
	}).Info("Aggregated feeds")

	return deduped, nil
}
