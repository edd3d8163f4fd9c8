// Package usecase wires the ports into the ingestion, retrieval and
// criteria flows.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hirarag/config"
	"hirarag/internal/domain"
	"hirarag/internal/port"
)

// SyncResult reports what one board sync did.
type SyncResult struct {
	BoardID        string `json:"boardId"`
	ProcessedPosts int    `json:"processedPosts"`
	NewDocuments   int    `json:"newDocuments"`
	SkippedFiles   int    `json:"skippedFiles"`
	NewDetected    bool   `json:"newDetected"`
}

// Syncer orchestrates crawl, extract, chunk, index and bookkeeping for all
// configured boards.
type Syncer struct {
	cfg        *config.Config
	crawler    port.Crawler
	store      port.MetadataStore
	index      port.VectorIndex
	extractor  port.Extractor
	docChunker port.Chunker // attachments, medical sectioning
	bodyChunk  port.Chunker // post body text, generic splitting
	log        zerolog.Logger

	now func() time.Time
}

func NewSyncer(cfg *config.Config, crawler port.Crawler, store port.MetadataStore, index port.VectorIndex, extractor port.Extractor, docChunker, bodyChunker port.Chunker, log zerolog.Logger) *Syncer {
	return &Syncer{
		cfg:        cfg,
		crawler:    crawler,
		store:      store,
		index:      index,
		extractor:  extractor,
		docChunker: docChunker,
		bodyChunk:  bodyChunker,
		log:        log,
		now:        time.Now,
	}
}

var unsafeTitleChars = regexp.MustCompile(`[^a-zA-Z0-9가-힣]`)

// textFileName builds the materialized body text filename:
// boardID_postNo_sanitizedTitle_date.txt.
func textFileName(boardID, postNo, title string, now time.Time) string {
	if title == "" {
		title = "제목없음"
	}
	safe := unsafeTitleChars.ReplaceAllString(title, "_")
	return fmt.Sprintf("%s_%s_%s_%s.txt", boardID, postNo, safe, now.Format("2006-01-02"))
}

// Sync runs all configured boards in order, most recent post only per
// board. A new post on the announcement board forces the chemotherapy
// board to reprocess even already-recorded files, since its attachments
// change without new posts appearing.
func (s *Syncer) Sync(ctx context.Context, force bool) (map[string]SyncResult, error) {
	s.log.Info().Bool("force", force).Msg("full sync started")

	results := make(map[string]SyncResult, len(s.cfg.Boards))
	announcementNew := false
	for _, board := range s.cfg.Boards {
		boardForce := force
		if board.ID == domain.BoardChemotherapy && announcementNew {
			s.log.Info().Msg("new announcement detected, forcing chemotherapy board resync")
			boardForce = true
		}

		res, err := s.SyncBoard(ctx, board.ID, s.cfg.Sync.PostLimit, boardForce)
		if err != nil {
			return results, fmt.Errorf("sync board %s: %w", board.ID, err)
		}
		results[board.ID] = res

		if board.ID == domain.BoardAnnouncement && res.NewDetected {
			announcementNew = true
		}
	}

	if err := s.store.RecordGlobalSync(s.now()); err != nil {
		return results, fmt.Errorf("record global sync: %w", err)
	}
	s.log.Info().Msg("full sync done")
	return results, nil
}

// SyncBoard ingests the most recent posts of one board. force bypasses the
// already-processed skip. The board watermark only advances after the
// vector index accepted the batch, so an indexing failure retries the same
// content on the next run.
func (s *Syncer) SyncBoard(ctx context.Context, boardID string, limit int, force bool) (SyncResult, error) {
	result := SyncResult{BoardID: boardID}

	boardCfg, ok := s.cfg.Board(boardID)
	if !ok {
		return result, fmt.Errorf("unknown board: %s", boardID)
	}
	s.log.Info().Str("board", boardID).Str("name", boardCfg.Name).Bool("force", force).Msg("board sync started")

	posts, err := s.crawler.CrawlBoard(ctx, boardID, limit)
	if err != nil {
		return result, fmt.Errorf("crawl board %s: %w", boardID, err)
	}
	result.ProcessedPosts = len(posts)

	var newDocs []domain.Chunk
	for _, post := range posts {
		if boardCfg.Type == "announcement" && post.BodyText != "" {
			chunks, err := s.processBody(post, boardCfg)
			if err != nil {
				return result, err
			}
			if len(chunks) > 0 {
				result.NewDetected = true
			}
			newDocs = append(newDocs, chunks...)
		}

		for _, att := range post.Attachments {
			chunks, skipped := s.processAttachment(boardID, post, att, force)
			if skipped {
				result.SkippedFiles++
				continue
			}
			if len(chunks) > 0 {
				result.NewDetected = true
			}
			newDocs = append(newDocs, chunks...)
		}
	}

	if len(newDocs) > 0 {
		if err := s.index.AddDocuments(ctx, newDocs); err != nil {
			return result, fmt.Errorf("index %d chunks for board %s: %w", len(newDocs), boardID, err)
		}
	}
	result.NewDocuments = len(newDocs)

	if err := s.store.RecordBoardSync(boardID, s.now()); err != nil {
		return result, fmt.Errorf("record board sync: %w", err)
	}

	s.log.Info().
		Str("board", boardID).
		Int("posts", result.ProcessedPosts).
		Int("chunks", result.NewDocuments).
		Int("skipped", result.SkippedFiles).
		Msg("board sync done")
	return result, nil
}

// processBody materializes the post body as a text file with a provenance
// preamble, records it and chunks it for indexing.
func (s *Syncer) processBody(post domain.Post, boardCfg config.BoardConfig) ([]domain.Chunk, error) {
	now := s.now()
	filename := textFileName(post.BoardID, post.PostNo, post.Title, now)
	path := filepath.Join(s.cfg.TextDir(), filename)

	title := post.Title
	if title == "" {
		title = "제목없음"
	}
	content := fmt.Sprintf("제목: %s\n게시번호: %s\n게시일: %s\n게시판: %s\n본문: %s",
		title, post.PostNo, now.Format(time.RFC3339), boardCfg.Name, post.BodyText)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write text file %s: %w", filename, err)
	}
	if err := s.store.RecordFile(post.BoardID, post.PostNo, filename, path, content); err != nil {
		return nil, fmt.Errorf("record text file %s: %w", filename, err)
	}

	src := domain.SourceInfo{
		BoardID:  post.BoardID,
		PostNo:   post.PostNo,
		Title:    title,
		Filename: filename,
		FilePath: path,
		Type:     "text",
	}
	chunks, err := s.bodyChunk.Chunk(content, src)
	if err != nil {
		return nil, fmt.Errorf("chunk body of post %s: %w", post.PostNo, err)
	}
	return chunks, nil
}

// processAttachment extracts, chunks and records one attachment. An
// attachment recorded earlier with usable text is skipped unless forced; a
// failed extraction is logged and dropped without error.
func (s *Syncer) processAttachment(boardID string, post domain.Post, att domain.Attachment, force bool) (chunks []domain.Chunk, skipped bool) {
	if !force && s.isProcessedWithText(boardID, post.PostNo, att.Filename) {
		s.log.Debug().Str("file", att.Filename).Msg("already processed, skipping")
		return nil, true
	}

	text := s.extractor.ExtractText(att.FilePath)
	if strings.TrimSpace(text) == "" {
		s.log.Warn().Str("file", att.Filename).Msg("no text extracted from attachment")
		return nil, false
	}

	title := post.Title
	if title == "" {
		title = "제목없음"
	}
	src := domain.SourceInfo{
		BoardID:  boardID,
		PostNo:   post.PostNo,
		Title:    title,
		Filename: att.Filename,
		FilePath: att.FilePath,
		Type:     "document",
	}
	chunks, err := s.docChunker.Chunk(text, src)
	if err != nil {
		s.log.Warn().Err(err).Str("file", att.Filename).Msg("chunking failed")
		return nil, false
	}
	if len(chunks) == 0 {
		return nil, false
	}

	if err := s.store.RecordFile(boardID, post.PostNo, att.Filename, att.FilePath, text); err != nil {
		s.log.Warn().Err(err).Str("file", att.Filename).Msg("recording file failed")
	}
	return chunks, false
}

// isProcessedWithText reports whether the file is recorded with non-empty
// extracted text. Entries without text are reprocessed; their extraction
// failed on an earlier run.
func (s *Syncer) isProcessedWithText(boardID, postNo, filename string) bool {
	if !s.store.IsProcessed(boardID, postNo, filename) {
		return false
	}
	meta := s.store.Metadata()
	file, ok := meta.Files[domain.FileKey(boardID, postNo, filename)]
	return ok && strings.TrimSpace(file.TextContent) != ""
}
