package cache

import (
	"context"
	"sync"
	"time"

	"curator/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an aggregation snapshot is served before the next
// access triggers a refresh.
const DefaultTTL = 5 * time.Minute

// Aggregator produces a fresh article snapshot. Satisfied by feeds.Pipeline.
type Aggregator interface {
	FetchAll(ctx context.Context) ([]models.Article, error)
}

// Live is a time-boxed in-memory cache of the last aggregation result. It is
// an owned instance with its own state; readers always see a complete
// snapshot because the swap happens under the write lock only after a
// refresh fully succeeded.
type Live struct {
	mu        sync.RWMutex
	articles  []models.Article
	lastFetch time.Time

	ttl        time.Duration
	aggregator Aggregator
	group      singleflight.Group
}

func NewLive(aggregator Aggregator, ttl time.Duration) *Live {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Live{
		ttl:        ttl,
		aggregator: aggregator,
	}
}

// GetOrRefresh returns the current snapshot, running the aggregation
// pipeline first if the cache is empty or stale. Concurrent callers share a
// single refresh via singleflight instead of each triggering their own
// aggregation pass.
func (l *Live) GetOrRefresh(ctx context.Context) ([]models.Article, error) {
	if articles, ok := l.fresh(); ok {
		return articles, nil
	}

	result, err, shared := l.group.Do("refresh", func() (interface{}, error) {
		// A caller that queued behind a completed flight gets the fresh
		// snapshot without another pipeline run.
		if articles, ok := l.fresh(); ok {
			return articles, nil
		}

		articles, err := l.aggregator.FetchAll(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.articles = articles
		l.lastFetch = time.Now()
		l.mu.Unlock()

		log.WithFields(log.Fields{
			"count": len(articles),
		}).Info("Refreshed live cache")

		return articles, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		log.Debug("Cache refresh shared with concurrent caller")
	}

	return result.([]models.Article), nil
}

// Invalidate drops the snapshot entirely, forcing the next access to re-run
// the pipeline. Called when feed configuration changes so results computed
// against the old config are never served.
func (l *Live) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.articles = nil
	l.lastFetch = time.Time{}
	log.Info("Invalidated live cache")
}

// IsStale reports whether the snapshot is missing or older than the TTL.
func (l *Live) IsStale() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.staleLocked()
}

// Status reports cache state for the dashboard.
func (l *Live) Status() models.CacheStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	status := models.CacheStatus{
		ArticleCount: len(l.articles),
		IsStale:      l.staleLocked(),
	}
	if !l.lastFetch.IsZero() {
		lastUpdate := l.lastFetch
		status.LastUpdate = &lastUpdate
	}
	return status
}

func (l *Live) fresh() ([]models.Article, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.staleLocked() {
		return nil, false
	}
	return l.articles, true
}

func (l *Live) staleLocked() bool {
	return l.lastFetch.IsZero() || time.Since(l.lastFetch) > l.ttl
}
