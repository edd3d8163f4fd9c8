package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"hirarag/internal/domain"
)

var (
	bucketFiles  = []byte("files")
	bucketBoards = []byte("boards")
	bucketSync   = []byte("sync")
	keyLastSync  = []byte("last_sync")
)

// BoltStore is the transactional MetadataStore backend. It keeps the same
// single-writer semantics as the JSON file but avoids rewriting the whole
// aggregate on every record.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the bolt database at path and seeds the
// known board list.
func NewBoltStore(path string, boards map[string]string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketFiles, bucketBoards, bucketSync} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		bb := tx.Bucket(bucketBoards)
		for id, name := range boards {
			if bb.Get([]byte(id)) != nil {
				continue
			}
			data, err := json.Marshal(domain.Board{BoardID: id, Name: name})
			if err != nil {
				return err
			}
			if err := bb.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) IsProcessed(boardID, postNo, filename string) bool {
	var found bool
	s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketFiles).Get([]byte(domain.FileKey(boardID, postNo, filename))) != nil
		return nil
	})
	return found
}

func (s *BoltStore) RecordFile(boardID, postNo, filename, filePath, textContent string) error {
	var size int64
	if fi, err := os.Stat(filePath); err == nil {
		size = fi.Size()
	}

	file := domain.SourceFile{
		BoardID:     boardID,
		PostNo:      postNo,
		Filename:    filename,
		FilePath:    filePath,
		TextContent: textContent,
		ProcessedAt: time.Now(),
		FileSize:    size,
	}
	data, err := json.Marshal(file)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(domain.FileKey(boardID, postNo, filename)), data)
	})
}

func (s *BoltStore) RecordBoardSync(boardID string, ts time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bb := tx.Bucket(bucketBoards)
		var board domain.Board
		if data := bb.Get([]byte(boardID)); data != nil {
			if err := json.Unmarshal(data, &board); err != nil {
				board = domain.Board{}
			}
		}
		board.BoardID = boardID
		board.LastSync = &ts

		data, err := json.Marshal(board)
		if err != nil {
			return err
		}
		return bb.Put([]byte(boardID), data)
	})
}

func (s *BoltStore) RecordGlobalSync(ts time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(ts)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSync).Put(keyLastSync, data)
	})
}

func (s *BoltStore) Metadata() domain.Metadata {
	meta := domain.Metadata{
		Files:  make(map[string]domain.SourceFile),
		Boards: make(map[string]domain.Board),
	}

	s.db.View(func(tx *bbolt.Tx) error {
		tx.Bucket(bucketFiles).ForEach(func(k, v []byte) error {
			var f domain.SourceFile
			if err := json.Unmarshal(v, &f); err != nil {
				return nil // skip corrupted entries
			}
			meta.Files[string(k)] = f
			return nil
		})
		tx.Bucket(bucketBoards).ForEach(func(k, v []byte) error {
			var b domain.Board
			if err := json.Unmarshal(v, &b); err != nil {
				return nil
			}
			meta.Boards[string(k)] = b
			return nil
		})
		if data := tx.Bucket(bucketSync).Get(keyLastSync); data != nil {
			var ts time.Time
			if err := json.Unmarshal(data, &ts); err == nil {
				meta.LastSync = &ts
			}
		}
		return nil
	})

	return meta
}

func (s *BoltStore) Close() error { return s.db.Close() }
