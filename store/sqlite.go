package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"curator/models"

	"github.com/google/uuid"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

const articlesTable = "curated_articles"

var articleColumns = []string{
	"id", "title", "description", "url", "source_name", "published_at",
	"category", "raw_content", "image_url", "matched_keywords", "status",
	"rewritten_title", "rewritten_content", "publish_html", "published_url",
	"published_record_id", "created_at", "updated_at",
}

// SQLite persists curated articles in an SQLite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(database string) (*SQLite, error) {
	db, err := connection(database)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Create(ctx context.Context, article models.CuratedArticle) (models.CuratedArticle, error) {
	now := time.Now()
	article.ID = uuid.New().String()
	article.CreatedAt = now
	article.UpdatedAt = now

	keywords, err := json.Marshal(article.MatchedKeywords)
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "create", Err: err}
	}

	insert := sqlbuilder.NewInsertBuilder()
	query, args := insert.InsertInto(articlesTable).Cols(articleColumns...).Values(
		article.ID,
		article.Title,
		article.Description,
		article.URL,
		article.SourceName,
		article.PublishedAt.Unix(),
		article.Category,
		article.RawContent,
		article.ImageURL,
		string(keywords),
		string(article.Status),
		article.RewrittenTitle,
		article.RewrittenContent,
		article.PublishHTML,
		article.PublishedURL,
		article.PublishedRecordID,
		article.CreatedAt.Unix(),
		article.UpdatedAt.Unix(),
	).Build()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.WithFields(log.Fields{
			"url":   article.URL,
			"error": err,
		}).Error("Error inserting curated article")
		return models.CuratedArticle{}, &models.PersistError{Op: "create", Err: err}
	}

	return article, nil
}

func (s *SQLite) List(ctx context.Context) ([]models.CuratedArticle, error) {
	sb := sqlbuilder.NewSelectBuilder()
	query, args := sb.Select(articleColumns...).From(articlesTable).
		OrderBy("created_at").Desc().
		Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.PersistError{Op: "list", Err: err}
	}
	defer rows.Close()

	var articles []models.CuratedArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, &models.PersistError{Op: "list", Err: err}
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id string) (models.CuratedArticle, error) {
	sb := sqlbuilder.NewSelectBuilder()
	query, args := sb.Select(articleColumns...).From(articlesTable).
		Where(sb.Equal("id", id)).
		Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "get", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		return models.CuratedArticle{}, &models.NotFoundError{ID: id}
	}

	article, err := scanArticle(rows)
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "get", Err: err}
	}
	return article, nil
}

func (s *SQLite) Update(ctx context.Context, article models.CuratedArticle) (models.CuratedArticle, error) {
	article.UpdatedAt = time.Now()

	keywords, err := json.Marshal(article.MatchedKeywords)
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "update", Err: err}
	}

	update := sqlbuilder.NewUpdateBuilder()
	query, args := update.Update(articlesTable).Set(
		update.Assign("title", article.Title),
		update.Assign("description", article.Description),
		update.Assign("url", article.URL),
		update.Assign("source_name", article.SourceName),
		update.Assign("published_at", article.PublishedAt.Unix()),
		update.Assign("category", article.Category),
		update.Assign("raw_content", article.RawContent),
		update.Assign("image_url", article.ImageURL),
		update.Assign("matched_keywords", string(keywords)),
		update.Assign("status", string(article.Status)),
		update.Assign("rewritten_title", article.RewrittenTitle),
		update.Assign("rewritten_content", article.RewrittenContent),
		update.Assign("publish_html", article.PublishHTML),
		update.Assign("published_url", article.PublishedURL),
		update.Assign("published_record_id", article.PublishedRecordID),
		update.Assign("updated_at", article.UpdatedAt.Unix()),
	).Where(update.Equal("id", article.ID)).Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "update", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.CuratedArticle{}, &models.PersistError{Op: "update", Err: err}
	}
	if affected == 0 {
		return models.CuratedArticle{}, &models.NotFoundError{ID: article.ID}
	}

	return article, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	del := sqlbuilder.NewDeleteBuilder()
	query, args := del.DeleteFrom(articlesTable).Where(del.Equal("id", id)).Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &models.PersistError{Op: "delete", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &models.PersistError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return &models.NotFoundError{ID: id}
	}

	return nil
}

func scanArticle(rows *sql.Rows) (models.CuratedArticle, error) {
	var article models.CuratedArticle
	var publishedAt, createdAt, updatedAt int64
	var keywords, status string

	if err := rows.Scan(
		&article.ID,
		&article.Title,
		&article.Description,
		&article.URL,
		&article.SourceName,
		&publishedAt,
		&article.Category,
		&article.RawContent,
		&article.ImageURL,
		&keywords,
		&status,
		&article.RewrittenTitle,
		&article.RewrittenContent,
		&article.PublishHTML,
		&article.PublishedURL,
		&article.PublishedRecordID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return models.CuratedArticle{}, err
	}

	article.PublishedAt = time.Unix(publishedAt, 0)
	article.CreatedAt = time.Unix(createdAt, 0)
	article.UpdatedAt = time.Unix(updatedAt, 0)
	article.Status = models.Status(status)

	if err := json.Unmarshal([]byte(keywords), &article.MatchedKeywords); err != nil {
		// Old rows may carry malformed keyword blobs; the article is still
		// usable without them.
		article.MatchedKeywords = nil
	}

	return article, nil
}

var _ Store = (*SQLite)(nil)
