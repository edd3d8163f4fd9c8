package port

import "hirarag/internal/domain"

// Chunker converts raw document text into section-tagged chunks carrying
// the given provenance. Empty input yields an empty chunk list.
type Chunker interface {
	Chunk(text string, src domain.SourceInfo) ([]domain.Chunk, error)
}

// Extractor pulls plain text out of a downloaded file. Failures surface as
// an empty string so ingestion continues with degraded content.
type Extractor interface {
	ExtractText(path string) string
}
