package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"curator/models"

	"github.com/labstack/gommon/log"
)

// WordPress publishes posts through the WordPress REST API using an
// application password.
type WordPress struct {
	baseURL    string
	username   string
	appPass    string
	httpClient *http.Client
}

var _ Publisher = (*WordPress)(nil)

func NewWordPress(baseURL, username, appPassword string) *WordPress {
	return &WordPress{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		appPass:  appPassword,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type wordpressPost struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// Publish creates a published post and returns its public URL and record id.
func (w *WordPress) Publish(ctx context.Context, html, title string) (models.PublishResult, error) {
	if w.baseURL == "" || w.username == "" || w.appPass == "" {
		return models.PublishResult{}, fmt.Errorf("wordpress client misconfigured")
	}

	body, err := json.Marshal(map[string]string{
		"title":   title,
		"content": html,
		"status":  "publish",
	})
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("marshal post: %w", err)
	}

	endpoint := w.baseURL + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(w.username, w.appPass)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.PublishResult{}, fmt.Errorf("wordpress error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var post wordpressPost
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return models.PublishResult{}, fmt.Errorf("decode wordpress response: %w", err)
	}

	log.Infof("Published post %d at %s", post.ID, post.Link)

	return models.PublishResult{
		URL:      post.Link,
		RecordID: strconv.FormatInt(post.ID, 10),
	}, nil
}
