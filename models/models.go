package models

import "time"

// Article is a live article produced by one ingestion pass. It is never
// persisted; identity is the canonical URL.
type Article struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	SourceName      string    `json:"sourceName"`
	PublishedAt     time.Time `json:"publishedAt"`
	Category        string    `json:"category"`
	RawContent      string    `json:"rawContent"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	MatchedKeywords []string  `json:"matchedKeywords"`
}

// CuratedArticle is a persisted article that an editor has picked up from the
// live set. Ingestion only ever reads these records (to compute the pending
// diff); all mutations go through the curation orchestrator.
type CuratedArticle struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	URL               string    `json:"url"`
	SourceName        string    `json:"sourceName"`
	PublishedAt       time.Time `json:"publishedAt"`
	Category          string    `json:"category"`
	RawContent        string    `json:"rawContent"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	MatchedKeywords   []string  `json:"matchedKeywords"`
	Status            Status    `json:"status"`
	RewrittenTitle    string    `json:"rewrittenTitle,omitempty"`
	RewrittenContent  string    `json:"rewrittenContent,omitempty"`
	PublishHTML       string    `json:"publishHtml,omitempty"`
	PublishedURL      string    `json:"publishedUrl,omitempty"`
	PublishedRecordID string    `json:"publishedRecordId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Curated builds a CuratedArticle from a live article with status selected.
func Curated(article Article) CuratedArticle {
	return CuratedArticle{
		Title:           article.Title,
		Description:     article.Description,
		URL:             article.URL,
		SourceName:      article.SourceName,
		PublishedAt:     article.PublishedAt,
		Category:        article.Category,
		RawContent:      article.RawContent,
		ImageURL:        article.ImageURL,
		MatchedKeywords: article.MatchedKeywords,
		Status:          StatusSelected,
	}
}

// CurationView is the four-bucket dashboard view: live articles nobody has
// selected yet, plus the persisted records partitioned by status.
type CurationView struct {
	Pending   []Article        `json:"pending"`
	Selected  []CuratedArticle `json:"selected"`
	Rewritten []CuratedArticle `json:"rewritten"`
	Published []CuratedArticle `json:"published"`

	// IngestDegraded is set when the live pipeline failed and the pending
	// list is empty because of that, not because there is nothing new.
	IngestDegraded bool `json:"ingestDegraded,omitempty"`
}

// CacheStatus describes the live cache for the dashboard.
type CacheStatus struct {
	ArticleCount int        `json:"articleCount"`
	LastUpdate   *time.Time `json:"lastUpdate"`
	IsStale      bool       `json:"isStale"`
}

// RewriteResult is what the AI rewrite collaborator returns.
type RewriteResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// PublishResult is what the CMS publish collaborator returns.
type PublishResult struct {
	URL      string `json:"url"`
	RecordID string `json:"recordId"`
}
