package publish

import (
	"context"

	"curator/models"
)

// Publisher pushes rewritten HTML to the external CMS.
type Publisher interface {
	Publish(ctx context.Context, html, title string) (models.PublishResult, error)
}
