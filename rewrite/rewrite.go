package rewrite

import (
	"context"

	"curator/models"
)

// Options tune a single rewrite request.
type Options struct {
	Tone     string
	MaxWords int
}

// Rewriter turns a raw article into publishable copy. The orchestrator only
// cares about the state transition; content quality is this collaborator's
// problem.
type Rewriter interface {
	Rewrite(ctx context.Context, title, content string, opts Options) (models.RewriteResult, error)
}
