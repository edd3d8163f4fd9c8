package domain

import (
	"fmt"
	"time"
)

// Board identifiers on the HIRA review board site. The announcement board
// carries post body text; the chemotherapy board is attachment-only.
const (
	BoardAnnouncement = "HIRAA030023010000"
	BoardChemotherapy = "HIRAA030023030000"
)

// SourceFile is one downloaded or text-extracted file. Entries are written
// once and never reprocessed: re-ingestion of an already-recorded key is a
// no-op.
type SourceFile struct {
	BoardID     string    `json:"boardId"`
	PostNo      string    `json:"postNo"`
	Filename    string    `json:"filename"`
	FilePath    string    `json:"filePath"`
	TextContent string    `json:"textContent"`
	ProcessedAt time.Time `json:"processedAt"`
	FileSize    int64     `json:"fileSize"`
}

// Board is one external content source with its own sync watermark.
type Board struct {
	BoardID  string     `json:"boardId"`
	Name     string     `json:"name"`
	LastSync *time.Time `json:"lastSync"`
}

// Metadata is the aggregate persisted as a whole on every mutation.
type Metadata struct {
	LastSync *time.Time            `json:"lastSync"`
	Files    map[string]SourceFile `json:"files"`
	Boards   map[string]Board      `json:"boards"`
}

// FileKey builds the composite dedup key for a source file.
func FileKey(boardID, postNo, filename string) string {
	return fmt.Sprintf("%s_%s_%s", boardID, postNo, filename)
}

// SourceInfo is the provenance carried by every chunk and search result.
type SourceInfo struct {
	BoardID  string `json:"boardId"`
	PostNo   string `json:"postNo"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	FilePath string `json:"filePath"`
	Type     string `json:"type"` // "text" for post bodies, "document" for attachments
}

// Chunk is a bounded span of document text, the unit of embedding and
// retrieval. TotalChunks counts the chunks of the owning section, while
// ChunkIndex runs across the whole document.
type Chunk struct {
	Content     string
	Source      SourceInfo
	Section     string
	ChunkIndex  int
	TotalChunks int
}

// ID returns a stable identifier for the chunk inside the vector index.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_%s_%s_%d", c.Source.BoardID, c.Source.PostNo, c.Source.Filename, c.ChunkIndex)
}

// Search types recorded on results so callers can tell which signal
// produced a hit.
const (
	SearchTypeVector  = "vector"
	SearchTypeKeyword = "keyword"
	SearchTypeHybrid  = "hybrid"
	SearchTypeSection = "section"
)

// SearchResult is a scored retrieval hit. For keyword hits Content is a
// file-level prefix rather than a precise chunk; the granularity mismatch
// with vector hits is deliberate.
type SearchResult struct {
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
	Source     SourceInfo `json:"sourceInfo"`
	SearchType string     `json:"searchType"`
	Section    string     `json:"section,omitempty"`
	ChunkIndex int        `json:"-"`
}

// Query classification labels. The analyzer records all matched entities;
// Type is overwritten by each matching family in pattern order, so the
// last family that matches wins.
const (
	QueryGeneral   = "general"
	QueryDrug      = "drug"
	QueryDisease   = "disease"
	QuerySymptom   = "symptom"
	QueryProcedure = "procedure"
)

// QueryAnalysis is the outcome of entity extraction over a search query.
type QueryAnalysis struct {
	Type         string
	Drugs        []string
	Diseases     []string
	Symptoms     []string
	Procedures   []string
	Keywords     []string
	MedicalTerms []string
}

// Post is one crawled board post with its downloaded attachments.
type Post struct {
	BoardID     string
	PostNo      string
	Title       string
	BodyText    string
	Attachments []Attachment
}

// Attachment is one downloaded file belonging to a post.
type Attachment struct {
	Filename string
	FilePath string
	Size     int64
}
