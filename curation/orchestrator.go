package curation

import (
	"context"

	"curator/models"
	"curator/publish"
	"curator/rewrite"
	"curator/store"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// MaxPending caps how many not-yet-selected live articles the view returns.
const MaxPending = 200

// LiveSource is the slice of the live cache the orchestrator reads.
type LiveSource interface {
	GetOrRefresh(ctx context.Context) ([]models.Article, error)
}

// Orchestrator moves articles through the curation lifecycle. The persisted
// store is the source of truth for "already curated", the live cache for
// "currently available"; the pending list is the diff between the two,
// recomputed on every View call.
type Orchestrator struct {
	store     store.Store
	live      LiveSource
	rewriter  rewrite.Rewriter
	publisher publish.Publisher
}

func NewOrchestrator(s store.Store, live LiveSource, rewriter rewrite.Rewriter, publisher publish.Publisher) *Orchestrator {
	return &Orchestrator{
		store:     s,
		live:      live,
		rewriter:  rewriter,
		publisher: publisher,
	}
}

// View returns the four-bucket dashboard view. If live ingestion fails the
// persisted buckets are still returned and the view is flagged degraded, so
// an empty pending list is not mistaken for "no new articles".
func (o *Orchestrator) View(ctx context.Context) (models.CurationView, error) {
	persisted, err := o.store.List(ctx)
	if err != nil {
		return models.CurationView{}, err
	}

	view := models.CurationView{
		Pending:   []models.Article{},
		Selected:  []models.CuratedArticle{},
		Rewritten: []models.CuratedArticle{},
		Published: []models.CuratedArticle{},
	}

	for _, article := range persisted {
		switch article.Status {
		case models.StatusSelected:
			view.Selected = append(view.Selected, article)
		case models.StatusRewritten:
			view.Rewritten = append(view.Rewritten, article)
		case models.StatusPublished:
			view.Published = append(view.Published, article)
		default:
			log.WithFields(log.Fields{
				"id":     article.ID,
				"status": article.Status,
			}).Warn("Skipping persisted article with unknown status")
		}
	}

	live, err := o.live.GetOrRefresh(ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Live ingestion failed, serving persisted articles only")
		view.IngestDegraded = true
		return view, nil
	}

	curated := lo.SliceToMap(persisted, func(a models.CuratedArticle) (string, struct{}) {
		return a.URL, struct{}{}
	})

	for _, article := range live {
		if _, ok := curated[article.URL]; ok {
			continue
		}
		view.Pending = append(view.Pending, article)
		if len(view.Pending) >= MaxPending {
			break
		}
	}

	return view, nil
}

// Select persists a live article with status selected. The record is built
// in full before the single store write, so a failed write leaves nothing
// behind.
func (o *Orchestrator) Select(ctx context.Context, article models.Article) (models.CuratedArticle, error) {
	return o.store.Create(ctx, models.Curated(article))
}

// Deselect deletes a selected article, which makes its URL reappear as
// pending on the next cache refresh. Only selected articles can be
// deselected.
func (o *Orchestrator) Deselect(ctx context.Context, id string) error {
	article, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if article.Status != models.StatusSelected {
		return &models.InvalidTransitionError{Action: "deselect", From: article.Status}
	}
	return o.store.Delete(ctx, id)
}

// MarkRewritten stores rewritten content and advances the status. Rewriting
// again overwrites the previous rewrite.
func (o *Orchestrator) MarkRewritten(ctx context.Context, id, rewrittenTitle, rewrittenContent, publishHTML string) (models.CuratedArticle, error) {
	article, err := o.store.Get(ctx, id)
	if err != nil {
		return models.CuratedArticle{}, err
	}
	if !article.Status.CanTransition(models.StatusRewritten) {
		return models.CuratedArticle{}, &models.InvalidTransitionError{Action: "rewrite", From: article.Status}
	}

	article.Status = models.StatusRewritten
	article.RewrittenTitle = rewrittenTitle
	article.RewrittenContent = rewrittenContent
	article.PublishHTML = publishHTML
	return o.store.Update(ctx, article)
}

// MarkPublished records the CMS result and advances the status.
func (o *Orchestrator) MarkPublished(ctx context.Context, id, publishedURL, publishedRecordID string) (models.CuratedArticle, error) {
	article, err := o.store.Get(ctx, id)
	if err != nil {
		return models.CuratedArticle{}, err
	}
	if !article.Status.CanTransition(models.StatusPublished) {
		return models.CuratedArticle{}, &models.InvalidTransitionError{Action: "publish", From: article.Status}
	}

	article.Status = models.StatusPublished
	article.PublishedURL = publishedURL
	article.PublishedRecordID = publishedRecordID
	return o.store.Update(ctx, article)
}

// Rewrite runs the AI collaborator on an article and persists the result.
func (o *Orchestrator) Rewrite(ctx context.Context, id string, opts rewrite.Options) (models.CuratedArticle, error) {
	article, err := o.store.Get(ctx, id)
	if err != nil {
		return models.CuratedArticle{}, err
	}
	if !article.Status.CanTransition(models.StatusRewritten) {
		return models.CuratedArticle{}, &models.InvalidTransitionError{Action: "rewrite", From: article.Status}
	}

	result, err := o.rewriter.Rewrite(ctx, article.Title, article.RawContent, opts)
	if err != nil {
		return models.CuratedArticle{}, err
	}

	return o.MarkRewritten(ctx, id, result.Title, result.Content, result.HTML)
}

// Publish pushes a rewritten article to the CMS and persists the result.
func (o *Orchestrator) Publish(ctx context.Context, id string) (models.CuratedArticle, error) {
	article, err := o.store.Get(ctx, id)
	if err != nil {
		return models.CuratedArticle{}, err
	}
	if !article.Status.CanTransition(models.StatusPublished) {
		return models.CuratedArticle{}, &models.InvalidTransitionError{Action: "publish", From: article.Status}
	}

	result, err := o.publisher.Publish(ctx, article.PublishHTML, article.RewrittenTitle)
	if err != nil {
		return models.CuratedArticle{}, err
	}

	return o.MarkPublished(ctx, id, result.URL, result.RecordID)
}
