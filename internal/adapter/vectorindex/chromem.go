// Package vectorindex persists chunk embeddings in an embedded chromem
// database and serves similarity queries over them.
package vectorindex

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"hirarag/internal/domain"
	"hirarag/internal/port"
)

const collectionName = "hira-documents"

// ChromemIndex is a port.VectorIndex backed by a persisted chromem-go
// collection. With a nil embedder the index is disabled and every
// operation degrades to a no-op.
type ChromemIndex struct {
	path     string
	embedder port.Embedder
	log      zerolog.Logger

	mu  sync.RWMutex
	db  *chromem.DB
	col *chromem.Collection
}

func NewChromemIndex(path string, embedder port.Embedder, log zerolog.Logger) *ChromemIndex {
	return &ChromemIndex{
		path:     path,
		embedder: embedder,
		log:      log,
	}
}

// Initialize opens or creates the on-disk database and collection. It is a
// no-op when the index is disabled.
func (x *ChromemIndex) Initialize(ctx context.Context) error {
	if x.embedder == nil {
		x.log.Warn().Msg("vector index disabled, running keyword-only")
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	db, err := chromem.NewPersistentDB(x.path, false)
	if err != nil {
		return fmt.Errorf("open vector db: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, x.embeddingFunc())
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}

	x.db = db
	x.col = col
	x.log.Info().Str("path", x.path).Int("documents", col.Count()).Msg("vector index ready")
	return nil
}

func (x *ChromemIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return x.embedder.EmbedQuery(ctx, text)
	}
}

// AddDocuments embeds the chunks as one batch and inserts them. Metadata
// carries full provenance so results can be reconstructed without a side
// lookup.
func (x *ChromemIndex) AddDocuments(ctx context.Context, chunks []domain.Chunk) error {
	if x.embedder == nil || len(chunks) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.col == nil {
		return fmt.Errorf("vector index not initialized")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := x.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID(),
			Content:   c.Content,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"boardId":     c.Source.BoardID,
				"postNo":      c.Source.PostNo,
				"title":       c.Source.Title,
				"filename":    c.Source.Filename,
				"filePath":    c.Source.FilePath,
				"type":        c.Source.Type,
				"section":     c.Section,
				"chunkIndex":  strconv.Itoa(c.ChunkIndex),
				"totalChunks": strconv.Itoa(c.TotalChunks),
			},
		}
	}

	if err := x.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	x.log.Info().Int("chunks", len(chunks)).Int("total", x.col.Count()).Msg("chunks indexed")
	return nil
}

// SimilaritySearch returns up to k nearest chunks. chromem rejects queries
// asking for more results than stored documents, so k is clamped and an
// empty index yields an empty slice.
func (x *ChromemIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if x.embedder == nil {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.col == nil {
		return nil, fmt.Errorf("vector index not initialized")
	}

	count := x.col.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	hits, err := x.col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		chunkIndex, _ := strconv.Atoi(h.Metadata["chunkIndex"])
		results = append(results, domain.SearchResult{
			Content: h.Content,
			Score:   float64(h.Similarity),
			Source: domain.SourceInfo{
				BoardID:  h.Metadata["boardId"],
				PostNo:   h.Metadata["postNo"],
				Title:    h.Metadata["title"],
				Filename: h.Metadata["filename"],
				FilePath: h.Metadata["filePath"],
				Type:     h.Metadata["type"],
			},
			SearchType: domain.SearchTypeVector,
			Section:    h.Metadata["section"],
			ChunkIndex: chunkIndex,
		})
	}
	return results, nil
}

func (x *ChromemIndex) State() port.IndexState {
	if x.embedder == nil {
		return port.IndexDisabled
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.col == nil || x.col.Count() == 0 {
		return port.IndexEmpty
	}
	return port.IndexPopulated
}

func (x *ChromemIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.col == nil {
		return 0
	}
	return x.col.Count()
}

// Reset drops the collection and recreates it empty.
func (x *ChromemIndex) Reset(ctx context.Context) error {
	if x.embedder == nil {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil
	}

	if err := x.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := x.db.GetOrCreateCollection(collectionName, nil, x.embeddingFunc())
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	x.col = col
	x.log.Info().Msg("vector index reset")
	return nil
}
