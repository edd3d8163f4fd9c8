package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"hirarag/config"
	"hirarag/internal/domain"
	"hirarag/internal/port"
)

// RebuildResult reports what a full reindex did.
type RebuildResult struct {
	Files   int `json:"files"`
	Chunks  int `json:"chunks"`
	Skipped int `json:"skipped"`
}

// Reindexer rebuilds the vector index from scratch out of the files
// already on disk, re-extracting and re-chunking everything. Used after
// chunker or embedding changes, when the index is corrupt, or after a
// manual cleanup of the data directory.
type Reindexer struct {
	cfg         *config.Config
	store       port.MetadataStore
	index       port.VectorIndex
	extractor   port.Extractor
	docChunker  port.Chunker
	bodyChunker port.Chunker
	log         zerolog.Logger
}

func NewReindexer(cfg *config.Config, store port.MetadataStore, index port.VectorIndex, extractor port.Extractor, docChunker, bodyChunker port.Chunker, log zerolog.Logger) *Reindexer {
	return &Reindexer{
		cfg:         cfg,
		store:       store,
		index:       index,
		extractor:   extractor,
		docChunker:  docChunker,
		bodyChunker: bodyChunker,
		log:         log,
	}
}

// Rebuild drops the index, then walks the text and raw directories and
// re-ingests every file that has a metadata record. Files on disk without
// a record are skipped; provenance would be guesswork.
func (r *Reindexer) Rebuild(ctx context.Context, showProgress bool) (RebuildResult, error) {
	var result RebuildResult

	if err := r.index.Reset(ctx); err != nil {
		return result, fmt.Errorf("reset index: %w", err)
	}

	byPath := map[string]domain.SourceFile{}
	for _, f := range r.store.Metadata().Files {
		if f.FilePath != "" {
			byPath[filepath.Clean(f.FilePath)] = f
		}
	}

	var paths []string
	for _, pattern := range []string{
		filepath.Join(r.cfg.TextDir(), "**", "*.txt"),
		filepath.Join(r.cfg.RawDir(), "**", "*"),
	} {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return result, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(paths)), "reindexing")
	}

	var chunks []domain.Chunk
	for _, path := range paths {
		if bar != nil {
			bar.Add(1)
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		if filepath.Base(path) == "manifest.json" {
			continue
		}

		rec, ok := byPath[filepath.Clean(path)]
		if !ok {
			r.log.Warn().Str("path", path).Msg("file has no metadata record, skipping")
			result.Skipped++
			continue
		}

		fileChunks, err := r.reingest(path, rec)
		if err != nil {
			r.log.Warn().Err(err).Str("path", path).Msg("reingest failed, skipping")
			result.Skipped++
			continue
		}
		if len(fileChunks) == 0 {
			result.Skipped++
			continue
		}
		chunks = append(chunks, fileChunks...)
		result.Files++
	}

	if len(chunks) > 0 {
		if err := r.index.AddDocuments(ctx, chunks); err != nil {
			return result, fmt.Errorf("index %d chunks: %w", len(chunks), err)
		}
	}
	result.Chunks = len(chunks)

	r.log.Info().
		Int("files", result.Files).
		Int("chunks", result.Chunks).
		Int("skipped", result.Skipped).
		Msg("reindex done")
	return result, nil
}

func (r *Reindexer) reingest(path string, rec domain.SourceFile) ([]domain.Chunk, error) {
	inTextDir := strings.HasPrefix(filepath.Clean(path), filepath.Clean(r.cfg.TextDir())+string(filepath.Separator))

	src := domain.SourceInfo{
		BoardID:  rec.BoardID,
		PostNo:   rec.PostNo,
		Filename: rec.Filename,
		FilePath: rec.FilePath,
	}

	if inTextDir {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		src.Type = "text"
		return r.bodyChunker.Chunk(string(data), src)
	}

	text := r.extractor.ExtractText(path)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	// Refresh the stored text while we have it.
	if err := r.store.RecordFile(rec.BoardID, rec.PostNo, rec.Filename, rec.FilePath, text); err != nil {
		r.log.Warn().Err(err).Str("file", rec.Filename).Msg("refreshing record failed")
	}
	src.Type = "document"
	return r.docChunker.Chunk(text, src)
}
