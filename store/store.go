package store

import (
	"context"

	"curator/models"
)

// Store is the persisted curation collection. It is the single source of
// truth for which articles have been curated; the ingestion pipeline only
// ever reads it to keep already-curated URLs out of the pending list.
//
// Write failures surface as *models.PersistError, lookups of unknown ids as
// *models.NotFoundError. Implementations never swallow errors.
type Store interface {
	Create(ctx context.Context, article models.CuratedArticle) (models.CuratedArticle, error)
	List(ctx context.Context) ([]models.CuratedArticle, error)
	Get(ctx context.Context, id string) (models.CuratedArticle, error)
	Update(ctx context.Context, article models.CuratedArticle) (models.CuratedArticle, error)
	Delete(ctx context.Context, id string) error
}
