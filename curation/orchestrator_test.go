package curation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"curator/curation"
	"curator/models"
	"curator/rewrite"
	"curator/store"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLive serves a fixed live article list, or an error.
type stubLive struct {
	articles []models.Article
	err      error
}

func (s *stubLive) GetOrRefresh(_ context.Context) ([]models.Article, error) {
	return s.articles, s.err
}

type stubRewriter struct {
	result models.RewriteResult
	err    error
	calls  int
}

func (s *stubRewriter) Rewrite(_ context.Context, _, _ string, _ rewrite.Options) (models.RewriteResult, error) {
	s.calls++
	return s.result, s.err
}

type stubPublisher struct {
	result models.PublishResult
	err    error
	calls  int
}

func (s *stubPublisher) Publish(_ context.Context, _, _ string) (models.PublishResult, error) {
	s.calls++
	return s.result, s.err
}

func liveArticle(url string) models.Article {
	return models.Article{
		Title:       "Article at " + url,
		Description: "description",
		URL:         url,
		SourceName:  "Test Feed",
		PublishedAt: time.Now(),
		Category:    "tech",
		RawContent:  "raw content",
	}
}

func newOrchestrator(live *stubLive) (*curation.Orchestrator, *store.Memory, *stubRewriter, *stubPublisher) {
	memory := store.NewMemory()
	rewriter := &stubRewriter{result: models.RewriteResult{
		Title:   "Rewritten title",
		Content: "Rewritten content",
		HTML:    "<p>Rewritten content</p>",
	}}
	publisher := &stubPublisher{result: models.PublishResult{
		URL:      "https://cms.example/post/1",
		RecordID: "1",
	}}
	return curation.NewOrchestrator(memory, live, rewriter, publisher), memory, rewriter, publisher
}

func pendingURLs(view models.CurationView) []string {
	return lo.Map(view.Pending, func(a models.Article, _ int) string { return a.URL })
}

func TestSelectMovesArticleOutOfPending(t *testing.T) {
	live := &stubLive{articles: []models.Article{
		liveArticle("https://news.example/u1"),
		liveArticle("https://news.example/u2"),
		liveArticle("https://news.example/u3"),
	}}
	orch, _, _, _ := newOrchestrator(live)
	ctx := context.Background()

	view, err := orch.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://news.example/u1",
		"https://news.example/u2",
		"https://news.example/u3",
	}, pendingURLs(view))

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)
	assert.NotEmpty(t, selected.ID)
	assert.Equal(t, models.StatusSelected, selected.Status)

	view, err = orch.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://news.example/u2",
		"https://news.example/u3",
	}, pendingURLs(view))
	require.Len(t, view.Selected, 1)
	assert.Equal(t, "https://news.example/u1", view.Selected[0].URL)
}

func TestDeselectMakesArticlePendingAgain(t *testing.T) {
	live := &stubLive{articles: []models.Article{liveArticle("https://news.example/u1")}}
	orch, _, _, _ := newOrchestrator(live)
	ctx := context.Background()

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)

	view, err := orch.View(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Pending)

	require.NoError(t, orch.Deselect(ctx, selected.ID))

	view, err = orch.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news.example/u1"}, pendingURLs(view))
	assert.Empty(t, view.Selected)
}

func TestDeselectUnknownID(t *testing.T) {
	orch, _, _, _ := newOrchestrator(&stubLive{})

	var notFound *models.NotFoundError
	require.ErrorAs(t, orch.Deselect(context.Background(), "ghost"), &notFound)
}

func TestStatusTransitions(t *testing.T) {
	live := &stubLive{articles: []models.Article{liveArticle("https://news.example/u1")}}
	orch, _, _, _ := newOrchestrator(live)
	ctx := context.Background()

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)

	// Publishing a merely selected article is not allowed
	var transition *models.InvalidTransitionError
	_, err = orch.MarkPublished(ctx, selected.ID, "https://cms.example/p", "1")
	require.ErrorAs(t, err, &transition)

	rewritten, err := orch.MarkRewritten(ctx, selected.ID, "New title", "New content", "<p>New content</p>")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRewritten, rewritten.Status)
	assert.Equal(t, "New title", rewritten.RewrittenTitle)

	// Re-rewriting overwrites the previous rewrite
	rewritten, err = orch.MarkRewritten(ctx, selected.ID, "Second title", "Second content", "<p>Second content</p>")
	require.NoError(t, err)
	assert.Equal(t, "Second title", rewritten.RewrittenTitle)

	// Deselecting a rewritten article is not allowed
	require.ErrorAs(t, orch.Deselect(ctx, selected.ID), &transition)

	published, err := orch.MarkPublished(ctx, selected.ID, "https://cms.example/post/9", "9")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.Status)
	assert.Equal(t, "https://cms.example/post/9", published.PublishedURL)

	// Published articles cannot be rewritten again
	_, err = orch.MarkRewritten(ctx, selected.ID, "x", "y", "z")
	require.ErrorAs(t, err, &transition)

	view, err := orch.View(ctx)
	require.NoError(t, err)
	require.Len(t, view.Published, 1)
	assert.Empty(t, view.Selected)
	assert.Empty(t, view.Rewritten)
}

func TestRewriteUsesCollaborator(t *testing.T) {
	live := &stubLive{articles: []models.Article{liveArticle("https://news.example/u1")}}
	orch, _, rewriter, _ := newOrchestrator(live)
	ctx := context.Background()

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)

	article, err := orch.Rewrite(ctx, selected.ID, rewrite.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, rewriter.calls)
	assert.Equal(t, models.StatusRewritten, article.Status)
	assert.Equal(t, "Rewritten title", article.RewrittenTitle)
	assert.Equal(t, "<p>Rewritten content</p>", article.PublishHTML)
}

func TestPublishUsesCollaborator(t *testing.T) {
	live := &stubLive{articles: []models.Article{liveArticle("https://news.example/u1")}}
	orch, _, _, publisher := newOrchestrator(live)
	ctx := context.Background()

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)
	_, err = orch.MarkRewritten(ctx, selected.ID, "t", "c", "<p>c</p>")
	require.NoError(t, err)

	article, err := orch.Publish(ctx, selected.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.calls)
	assert.Equal(t, models.StatusPublished, article.Status)
	assert.Equal(t, "https://cms.example/post/1", article.PublishedURL)
	assert.Equal(t, "1", article.PublishedRecordID)
}

func TestPublishFailureLeavesStatusUntouched(t *testing.T) {
	live := &stubLive{articles: []models.Article{liveArticle("https://news.example/u1")}}
	orch, memory, _, publisher := newOrchestrator(live)
	publisher.err = errors.New("cms down")
	ctx := context.Background()

	selected, err := orch.Select(ctx, live.articles[0])
	require.NoError(t, err)
	_, err = orch.MarkRewritten(ctx, selected.ID, "t", "c", "<p>c</p>")
	require.NoError(t, err)

	_, err = orch.Publish(ctx, selected.ID)
	require.Error(t, err)

	stored, err := memory.Get(ctx, selected.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRewritten, stored.Status)
}

func TestViewDegradesWhenIngestionFails(t *testing.T) {
	live := &stubLive{err: errors.New("all feeds down")}
	orch, _, _, _ := newOrchestrator(live)
	ctx := context.Background()

	selected, err := orch.Select(ctx, liveArticle("https://news.example/u1"))
	require.NoError(t, err)

	view, err := orch.View(ctx)
	require.NoError(t, err, "persisted articles must survive an ingestion failure")
	assert.True(t, view.IngestDegraded)
	assert.Empty(t, view.Pending)
	require.Len(t, view.Selected, 1)
	assert.Equal(t, selected.ID, view.Selected[0].ID)
}

func TestViewCapsPending(t *testing.T) {
	var articles []models.Article
	for i := 0; i < curation.MaxPending+50; i++ {
		articles = append(articles, liveArticle(fmt.Sprintf("https://news.example/%d", i)))
	}
	live := &stubLive{articles: articles}
	orch, _, _, _ := newOrchestrator(live)

	view, err := orch.View(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Pending, curation.MaxPending)
}
