package port

import (
	"context"

	"hirarag/internal/domain"
)

// Crawler fetches the most recent posts of a board together with their
// downloaded attachments. Implementations are idempotent at the network
// level and perform no dedup of their own; dedup is the orchestrator's
// responsibility.
type Crawler interface {
	CrawlBoard(ctx context.Context, boardID string, limit int) ([]domain.Post, error)
}
