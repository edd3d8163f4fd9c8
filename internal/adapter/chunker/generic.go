package chunker

import (
	"hirarag/internal/domain"
)

// GenericChunker splits text with the recursive splitter alone, without
// term normalization or section extraction. Used for post body text, which
// is too short and too loosely structured for the section rules.
type GenericChunker struct {
	splitter *RecursiveSplitter
}

func NewGenericChunker(chunkSize, overlap int) *GenericChunker {
	return &GenericChunker{splitter: NewRecursiveSplitter(chunkSize, overlap, DefaultSeparators)}
}

func (c *GenericChunker) Chunk(text string, src domain.SourceInfo) ([]domain.Chunk, error) {
	parts := c.splitter.Split(text)
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, domain.Chunk{
			Content:     part,
			Source:      src,
			ChunkIndex:  i,
			TotalChunks: len(parts),
		})
	}
	return chunks, nil
}
