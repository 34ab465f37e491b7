package store

import (
	"context"
	"sync"
	"time"

	"curator/models"

	"github.com/google/uuid"
)

// Memory is an in-memory Store. It backs tests and serves as the degraded
// fallback when no database path is configured.
type Memory struct {
	mu       sync.RWMutex
	articles map[string]models.CuratedArticle
	order    []string
}

func NewMemory() *Memory {
	return &Memory{
		articles: make(map[string]models.CuratedArticle),
	}
}

func (m *Memory) Create(_ context.Context, article models.CuratedArticle) (models.CuratedArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	article.ID = uuid.New().String()
	article.CreatedAt = now
	article.UpdatedAt = now

	m.articles[article.ID] = article
	m.order = append(m.order, article.ID)
	return article, nil
}

func (m *Memory) List(_ context.Context) ([]models.CuratedArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	articles := make([]models.CuratedArticle, 0, len(m.articles))
	// Newest first, matching the SQLite ordering.
	for i := len(m.order) - 1; i >= 0; i-- {
		if article, ok := m.articles[m.order[i]]; ok {
			articles = append(articles, article)
		}
	}
	return articles, nil
}

func (m *Memory) Get(_ context.Context, id string) (models.CuratedArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	article, ok := m.articles[id]
	if !ok {
		return models.CuratedArticle{}, &models.NotFoundError{ID: id}
	}
	return article, nil
}

func (m *Memory) Update(_ context.Context, article models.CuratedArticle) (models.CuratedArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[article.ID]; !ok {
		return models.CuratedArticle{}, &models.NotFoundError{ID: article.ID}
	}

	article.UpdatedAt = time.Now()
	m.articles[article.ID] = article
	return article, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return &models.NotFoundError{ID: id}
	}
	delete(m.articles, id)
	return nil
}

var _ Store = (*Memory)(nil)
