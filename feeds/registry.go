package feeds

import (
	"fmt"
	"sync"

	"curator/config"
	"curator/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ConfigOrigin tags where the registry got its feed sources from, so the
// fallback path is visible instead of being buried in error handling.
type ConfigOrigin string

const (
	OriginFile     ConfigOrigin = "file"
	OriginDefaults ConfigOrigin = "defaults"
)

// Registry owns the configured feed sources. It is a constructed instance
// passed to whoever needs it, never package-level state, so tests and
// concurrent servers each get their own.
type Registry struct {
	mu     sync.RWMutex
	path   string
	cfg    *config.Config
	origin ConfigOrigin
}

// LoadRegistry tries each provider in priority order: the config file first,
// then the built-in defaults. The chosen origin is recorded on the registry.
func LoadRegistry(path string) (*Registry, error) {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		return &Registry{path: path, cfg: cfg, origin: OriginFile}, nil
	}

	log.WithFields(log.Fields{
		"path":  path,
		"error": err,
	}).Warn("Config file unavailable, falling back to built-in defaults")

	return &Registry{path: path, cfg: config.DefaultConfig(), origin: OriginDefaults}, nil
}

func (r *Registry) Origin() ConfigOrigin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.origin
}

// Sources returns a copy of all configured feed sources.
func (r *Registry) Sources() []config.FeedConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]config.FeedConfig(nil), r.cfg.Feeds...)
}

// Enabled returns the feed sources the pipeline should fetch.
func (r *Registry) Enabled() []config.FeedConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.cfg.Feeds, func(f config.FeedConfig, _ int) bool {
		return f.Enabled
	})
}

// KeywordsFor resolves the keyword list for a source: per-source custom
// keywords win, then any caller-supplied category override, then the
// category's configured list.
func (r *Registry) KeywordsFor(source config.FeedConfig, overrides map[string][]string) []string {
	if len(source.Keywords) > 0 {
		return source.Keywords
	}
	if keywords, ok := overrides[source.Category]; ok {
		return keywords
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Keywords[source.Category]
}

// Add validates and appends a new feed source, persisting the config file.
func (r *Registry) Add(source config.FeedConfig) error {
	if err := source.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.cfg.Feeds {
		if existing.ID == source.ID {
			return &models.ValidationError{Field: "id", Reason: fmt.Sprintf("%q already exists", source.ID)}
		}
	}

	r.cfg.Feeds = append(r.cfg.Feeds, source)
	return r.persist()
}

// Update replaces an existing feed source by id.
func (r *Registry) Update(source config.FeedConfig) error {
	if err := source.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.cfg.Feeds {
		if existing.ID == source.ID {
			r.cfg.Feeds[i] = source
			return r.persist()
		}
	}

	return &models.NotFoundError{ID: source.ID}
}

// Remove deletes a feed source by id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.cfg.Feeds {
		if existing.ID == id {
			r.cfg.Feeds = append(r.cfg.Feeds[:i], r.cfg.Feeds[i+1:]...)
			return r.persist()
		}
	}

	return &models.NotFoundError{ID: id}
}

func (r *Registry) persist() error {
	if err := config.SaveConfig(r.path, r.cfg); err != nil {
		return err
	}
	r.origin = OriginFile
	return nil
}
