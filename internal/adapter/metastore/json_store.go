package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hirarag/internal/domain"
)

// JSONStore persists the metadata aggregate as a single JSON file, read
// and rewritten wholesale on every mutation. A corrupt or missing file is
// replaced with a fresh default aggregate so ingestion can always proceed,
// at the cost of possibly re-downloading already-seen files.
type JSONStore struct {
	path string

	mu   sync.Mutex
	meta domain.Metadata
}

// NewJSONStore opens the aggregate at path, seeding the known board list
// when no usable file exists.
func NewJSONStore(path string, boards map[string]string) *JSONStore {
	s := &JSONStore{path: path}
	s.meta = s.load(boards)
	return s
}

func (s *JSONStore) load(boards map[string]string) domain.Metadata {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var meta domain.Metadata
		if jerr := json.Unmarshal(data, &meta); jerr == nil {
			if meta.Files == nil {
				meta.Files = make(map[string]domain.SourceFile)
			}
			if meta.Boards == nil {
				meta.Boards = make(map[string]domain.Board)
			}
			return meta
		} else {
			log.Warn().Err(jerr).Str("path", s.path).Msg("metadata file corrupt, starting fresh")
		}
	} else if !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", s.path).Msg("metadata file unreadable, starting fresh")
	}

	meta := domain.Metadata{
		Files:  make(map[string]domain.SourceFile),
		Boards: make(map[string]domain.Board),
	}
	for id, name := range boards {
		meta.Boards[id] = domain.Board{BoardID: id, Name: name}
	}
	return meta
}

// save rewrites the whole aggregate. Callers hold s.mu.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (s *JSONStore) IsProcessed(boardID, postNo, filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.meta.Files[domain.FileKey(boardID, postNo, filename)]
	return ok
}

func (s *JSONStore) RecordFile(boardID, postNo, filename, filePath, textContent string) error {
	var size int64
	if fi, err := os.Stat(filePath); err == nil {
		size = fi.Size()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.Files[domain.FileKey(boardID, postNo, filename)] = domain.SourceFile{
		BoardID:     boardID,
		PostNo:      postNo,
		Filename:    filename,
		FilePath:    filePath,
		TextContent: textContent,
		ProcessedAt: time.Now(),
		FileSize:    size,
	}
	return s.save()
}

func (s *JSONStore) RecordBoardSync(boardID string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.meta.Boards[boardID]
	b.BoardID = boardID
	b.LastSync = &ts
	s.meta.Boards[boardID] = b
	return s.save()
}

func (s *JSONStore) RecordGlobalSync(ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.LastSync = &ts
	return s.save()
}

// Metadata returns a deep-enough copy of the aggregate: the maps are
// copied so callers cannot race with subsequent mutations.
func (s *JSONStore) Metadata() domain.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := domain.Metadata{
		LastSync: s.meta.LastSync,
		Files:    make(map[string]domain.SourceFile, len(s.meta.Files)),
		Boards:   make(map[string]domain.Board, len(s.meta.Boards)),
	}
	for k, v := range s.meta.Files {
		out.Files[k] = v
	}
	for k, v := range s.meta.Boards {
		out.Boards[k] = v
	}
	return out
}

func (s *JSONStore) Close() error { return nil }
