package port

import (
	"context"

	"hirarag/internal/domain"
)

// Embedder generates vector embeddings for text. The langchaingo
// embeddings.Embedder interface satisfies this directly.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of document texts, one vector per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexState distinguishes an index with no real documents from a
// populated one, replacing sentinel-record content sniffing.
type IndexState int

const (
	IndexEmpty IndexState = iota
	IndexPopulated
	IndexDisabled // no embedding capability configured
)

// VectorIndex is an embedding-backed nearest-neighbor index over chunks,
// persisted to disk. Without embedding credentials every operation
// degrades to a no-op or empty result rather than an error.
type VectorIndex interface {
	// Initialize loads the persisted index or creates a fresh empty one.
	Initialize(ctx context.Context) error

	// AddDocuments embeds and inserts chunks, persisting the batch before
	// returning. An embedding failure aborts the whole batch.
	AddDocuments(ctx context.Context, chunks []domain.Chunk) error

	// SimilaritySearch returns up to k nearest chunks with scores, best
	// first.
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// State reports whether the index holds real documents.
	State() IndexState

	// Count returns the number of stored chunk records.
	Count() int

	// Reset drops all stored records, returning the index to IndexEmpty.
	Reset(ctx context.Context) error
}
