// Package crawler feeds board posts into the sync pipeline. The HIRA site
// requires a browser session to scrape, so this adapter reads manifests of
// pre-downloaded posts from the raw data directory instead. Each board has
// raw/<boardID>/manifest.json listing its posts newest first, with
// attachment paths relative to the board directory.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"hirarag/internal/domain"
)

type manifest struct {
	Posts []manifestPost `json:"posts"`
}

type manifestPost struct {
	PostNo      string   `json:"postNo"`
	Title       string   `json:"title"`
	BodyText    string   `json:"bodyText,omitempty"`
	BodyFile    string   `json:"bodyFile,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// ManifestCrawler implements port.Crawler over the raw directory layout.
type ManifestCrawler struct {
	rawDir string
	log    zerolog.Logger
}

func NewManifestCrawler(rawDir string, log zerolog.Logger) *ManifestCrawler {
	return &ManifestCrawler{rawDir: rawDir, log: log}
}

// CrawlBoard returns up to limit posts for the board, newest first. A
// missing manifest means the board simply has nothing staged and yields an
// empty slice.
func (c *ManifestCrawler) CrawlBoard(ctx context.Context, boardID string, limit int) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boardDir := filepath.Join(c.rawDir, boardID)
	data, err := os.ReadFile(filepath.Join(boardDir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Debug().Str("board", boardID).Msg("no manifest staged for board")
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest for board %s: %w", boardID, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest for board %s: %w", boardID, err)
	}

	posts := m.Posts
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		post := domain.Post{
			BoardID:  boardID,
			PostNo:   p.PostNo,
			Title:    p.Title,
			BodyText: p.BodyText,
		}
		if post.BodyText == "" && p.BodyFile != "" {
			body, err := os.ReadFile(filepath.Join(boardDir, p.BodyFile))
			if err != nil {
				c.log.Warn().Err(err).Str("board", boardID).Str("post", p.PostNo).Msg("body file unreadable")
			} else {
				post.BodyText = string(body)
			}
		}

		for _, name := range p.Attachments {
			path := filepath.Join(boardDir, name)
			info, err := os.Stat(path)
			if err != nil {
				c.log.Warn().Err(err).Str("board", boardID).Str("attachment", name).Msg("attachment missing, skipping")
				continue
			}
			post.Attachments = append(post.Attachments, domain.Attachment{
				Filename: filepath.Base(name),
				FilePath: path,
				Size:     info.Size(),
			})
		}

		out = append(out, post)
	}

	c.log.Info().Str("board", boardID).Int("posts", len(out)).Msg("board crawled")
	return out, nil
}
