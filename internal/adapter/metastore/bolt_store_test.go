package metastore

import (
	"path/filepath"
	"testing"
	"time"

	"hirarag/internal/domain"
)

func newTestBoltStore(t *testing.T, path string) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(path, testBoards)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStoreRecordAndDedup(t *testing.T) {
	s := newTestBoltStore(t, filepath.Join(t.TempDir(), "metadata.db"))

	if err := s.RecordFile(domain.BoardAnnouncement, "1", "a.pdf", "", "텍스트"); err != nil {
		t.Fatal(err)
	}
	if !s.IsProcessed(domain.BoardAnnouncement, "1", "a.pdf") {
		t.Error("recorded file not reported processed")
	}
	if s.IsProcessed(domain.BoardAnnouncement, "1", "b.pdf") {
		t.Error("unrecorded file reported processed")
	}

	meta := s.Metadata()
	if len(meta.Boards) != 2 {
		t.Errorf("boards = %d", len(meta.Boards))
	}
	rec := meta.Files[domain.FileKey(domain.BoardAnnouncement, "1", "a.pdf")]
	if rec.TextContent != "텍스트" {
		t.Errorf("text = %q", rec.TextContent)
	}
}

func TestBoltStoreWatermarks(t *testing.T) {
	s := newTestBoltStore(t, filepath.Join(t.TempDir(), "metadata.db"))

	ts := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	if err := s.RecordBoardSync(domain.BoardChemotherapy, ts); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordGlobalSync(ts); err != nil {
		t.Fatal(err)
	}

	meta := s.Metadata()
	if got := meta.Boards[domain.BoardChemotherapy].LastSync; got == nil || !got.Equal(ts) {
		t.Errorf("board watermark = %v", got)
	}
	if meta.LastSync == nil || !meta.LastSync.Equal(ts) {
		t.Errorf("global watermark = %v", meta.LastSync)
	}
	// Board names survive a watermark update.
	if meta.Boards[domain.BoardChemotherapy].Name != "항암화학요법 게시판" {
		t.Errorf("board name = %q", meta.Boards[domain.BoardChemotherapy].Name)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")

	s, err := NewBoltStore(path, testBoards)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFile(domain.BoardChemotherapy, "7", "list.xlsx", "", "허가초과 목록"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := newTestBoltStore(t, path)
	if !reopened.IsProcessed(domain.BoardChemotherapy, "7", "list.xlsx") {
		t.Error("record lost across reopen")
	}
}
