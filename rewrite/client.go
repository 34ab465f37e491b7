package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"curator/models"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const systemPrompt = `You rewrite news articles for a curated news site.
Respond with a JSON object containing "title", "content" (plain text) and
"html" (the content as clean HTML paragraphs). Keep the facts, change the
wording, do not editorialize.`

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Rewriter = (*Client)(nil)

func NewClient(endpoint, model, apiKey string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Rewrite sends the article to the model and decodes the structured reply.
func (c *Client) Rewrite(ctx context.Context, title, content string, opts Options) (models.RewriteResult, error) {
	if c.apiKey == "" || c.model == "" {
		return models.RewriteResult{}, fmt.Errorf("rewrite client misconfigured")
	}

	userPrompt := fmt.Sprintf("Title: %s\n\nArticle:\n%s", title, content)
	if opts.Tone != "" {
		userPrompt += fmt.Sprintf("\n\nTone: %s", opts.Tone)
	}
	if opts.MaxWords > 0 {
		userPrompt += fmt.Sprintf("\nMaximum length: %d words", opts.MaxWords)
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return models.RewriteResult{}, fmt.Errorf("marshal rewrite payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.RewriteResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.RewriteResult{}, fmt.Errorf("rewrite request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.RewriteResult{}, fmt.Errorf("rewrite error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return models.RewriteResult{}, fmt.Errorf("decode rewrite response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return models.RewriteResult{}, fmt.Errorf("rewrite response has no choices")
	}

	var result models.RewriteResult
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return models.RewriteResult{}, fmt.Errorf("decode rewritten article: %w", err)
	}
	if result.Title == "" || result.Content == "" {
		return models.RewriteResult{}, fmt.Errorf("rewritten article missing title or content")
	}
	if result.HTML == "" {
		result.HTML = "<p>" + strings.ReplaceAll(result.Content, "\n\n", "</p><p>") + "</p>"
	}

	return result, nil
}
