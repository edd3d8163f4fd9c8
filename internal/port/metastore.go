package port

import (
	"time"

	"hirarag/internal/domain"
)

// MetadataStore is the durable bookkeeping of processed source files and
// per-board sync watermarks. The whole aggregate is persisted on every
// mutation; implementations assume a single writer.
type MetadataStore interface {
	// IsProcessed reports whether the (boardID, postNo, filename) key has
	// already been recorded.
	IsProcessed(boardID, postNo, filename string) bool

	// RecordFile upserts a source file entry and persists the aggregate.
	// A missing file on disk is recorded with size 0, not an error.
	RecordFile(boardID, postNo, filename, filePath, textContent string) error

	RecordBoardSync(boardID string, ts time.Time) error

	RecordGlobalSync(ts time.Time) error

	// Metadata returns a snapshot of the aggregate for diagnostics and
	// keyword search.
	Metadata() domain.Metadata

	Close() error
}
