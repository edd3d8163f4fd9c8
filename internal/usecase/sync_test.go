package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hirarag/config"
	"hirarag/internal/adapter/chunker"
	"hirarag/internal/domain"
	"hirarag/internal/port"
)

type memStore struct {
	files      map[string]domain.SourceFile
	boards     map[string]domain.Board
	globalSync *time.Time
}

func newMemStore() *memStore {
	return &memStore{
		files:  map[string]domain.SourceFile{},
		boards: map[string]domain.Board{},
	}
}

func (s *memStore) IsProcessed(boardID, postNo, filename string) bool {
	_, ok := s.files[domain.FileKey(boardID, postNo, filename)]
	return ok
}

func (s *memStore) RecordFile(boardID, postNo, filename, filePath, textContent string) error {
	s.files[domain.FileKey(boardID, postNo, filename)] = domain.SourceFile{
		BoardID: boardID, PostNo: postNo, Filename: filename,
		FilePath: filePath, TextContent: textContent, ProcessedAt: time.Now(),
	}
	return nil
}

func (s *memStore) RecordBoardSync(boardID string, ts time.Time) error {
	b := s.boards[boardID]
	b.BoardID = boardID
	b.LastSync = &ts
	s.boards[boardID] = b
	return nil
}

func (s *memStore) RecordGlobalSync(ts time.Time) error {
	s.globalSync = &ts
	return nil
}

func (s *memStore) Metadata() domain.Metadata {
	return domain.Metadata{LastSync: s.globalSync, Files: s.files, Boards: s.boards}
}

func (s *memStore) Close() error { return nil }

type memIndex struct {
	chunks []domain.Chunk
	addErr error
}

func (m *memIndex) Initialize(context.Context) error { return nil }
func (m *memIndex) AddDocuments(_ context.Context, chunks []domain.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}
func (m *memIndex) SimilaritySearch(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}
func (m *memIndex) State() port.IndexState {
	if len(m.chunks) == 0 {
		return port.IndexEmpty
	}
	return port.IndexPopulated
}
func (m *memIndex) Count() int                 { return len(m.chunks) }
func (m *memIndex) Reset(context.Context) error { m.chunks = nil; return nil }

type fakeCrawler struct {
	posts map[string][]domain.Post
	calls []string
}

func (c *fakeCrawler) CrawlBoard(_ context.Context, boardID string, _ int) ([]domain.Post, error) {
	c.calls = append(c.calls, boardID)
	return c.posts[boardID], nil
}

type fakeExtractor struct {
	texts map[string]string
}

func (e *fakeExtractor) ExtractText(path string) string { return e.texts[path] }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.Dir = t.TempDir()
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestSyncer(t *testing.T, cfg *config.Config, cr port.Crawler, store port.MetadataStore, idx port.VectorIndex, ex port.Extractor) *Syncer {
	t.Helper()
	doc := chunker.NewMedicalChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap,
		cfg.Chunking.MinSectionLen, cfg.Chunking.MinResidualLen, zerolog.Nop())
	body := chunker.NewGenericChunker(cfg.Chunking.BodyChunkSize, cfg.Chunking.BodyChunkOverlap)
	return NewSyncer(cfg, cr, store, idx, ex, doc, body, zerolog.Nop())
}

func announcementPost(body string) domain.Post {
	return domain.Post{
		BoardID:  domain.BoardAnnouncement,
		PostNo:   "100",
		Title:    "급여기준 변경 공고",
		BodyText: body,
	}
}

func TestSyncBoardMaterializesBodyText(t *testing.T) {
	cfg := testConfig(t)
	store := newMemStore()
	idx := &memIndex{}
	body := strings.Repeat("면역항암제 급여 적용 범위를 확대한다. ", 10)
	cr := &fakeCrawler{posts: map[string][]domain.Post{
		domain.BoardAnnouncement: {announcementPost(body)},
	}}

	s := newTestSyncer(t, cfg, cr, store, idx, &fakeExtractor{})
	res, err := s.SyncBoard(context.Background(), domain.BoardAnnouncement, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewDocuments == 0 || !res.NewDetected {
		t.Errorf("expected new documents, got %+v", res)
	}

	// One text file materialized with the provenance preamble.
	entries, err := os.ReadDir(cfg.TextDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d text files", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, domain.BoardAnnouncement+"_100_") || !strings.HasSuffix(name, ".txt") {
		t.Errorf("unexpected filename %q", name)
	}
	data, err := os.ReadFile(filepath.Join(cfg.TextDir(), name))
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"제목: ", "게시번호: 100", "게시일: ", "게시판: ", "본문: "} {
		if !strings.Contains(string(data), field) {
			t.Errorf("preamble missing %q", field)
		}
	}

	if !store.IsProcessed(domain.BoardAnnouncement, "100", name) {
		t.Error("text file not recorded in metadata")
	}
	if idx.Count() != res.NewDocuments {
		t.Errorf("index holds %d chunks, result says %d", idx.Count(), res.NewDocuments)
	}
	if store.boards[domain.BoardAnnouncement].LastSync == nil {
		t.Error("board watermark not recorded")
	}
}

func TestSyncBoardProcessesAttachments(t *testing.T) {
	cfg := testConfig(t)
	store := newMemStore()
	idx := &memIndex{}

	attPath := filepath.Join(cfg.RawDir(), "protocol.pdf")
	post := domain.Post{
		BoardID: domain.BoardChemotherapy,
		PostNo:  "50",
		Title:   "허가초과 요법 공고",
		Attachments: []domain.Attachment{
			{Filename: "protocol.pdf", FilePath: attPath},
		},
	}
	cr := &fakeCrawler{posts: map[string][]domain.Post{domain.BoardChemotherapy: {post}}}
	ex := &fakeExtractor{texts: map[string]string{
		attPath: strings.Repeat("급여기준: 허가초과 요법의 급여 적용 조건을 따른다. ", 10),
	}}

	s := newTestSyncer(t, cfg, cr, store, idx, ex)
	res, err := s.SyncBoard(context.Background(), domain.BoardChemotherapy, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewDocuments == 0 {
		t.Fatal("expected chunks from attachment")
	}
	if !store.IsProcessed(domain.BoardChemotherapy, "50", "protocol.pdf") {
		t.Error("attachment not recorded")
	}
	rec := store.files[domain.FileKey(domain.BoardChemotherapy, "50", "protocol.pdf")]
	if rec.TextContent == "" {
		t.Error("extracted text not stored")
	}

	// Second run: already processed with text, nothing new.
	idx2 := &memIndex{}
	s2 := newTestSyncer(t, cfg, cr, store, idx2, ex)
	res2, err := s2.SyncBoard(context.Background(), domain.BoardChemotherapy, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res2.NewDocuments != 0 || res2.SkippedFiles != 1 {
		t.Errorf("expected dedup skip, got %+v", res2)
	}

	// Forced run bypasses the skip.
	res3, err := s2.SyncBoard(context.Background(), domain.BoardChemotherapy, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if res3.NewDocuments == 0 || res3.SkippedFiles != 0 {
		t.Errorf("force should reprocess, got %+v", res3)
	}
}

func TestSyncBoardIndexFailureKeepsWatermark(t *testing.T) {
	cfg := testConfig(t)
	store := newMemStore()
	idx := &memIndex{addErr: errors.New("embedding quota exhausted")}
	cr := &fakeCrawler{posts: map[string][]domain.Post{
		domain.BoardAnnouncement: {announcementPost(strings.Repeat("본문 내용. ", 20))},
	}}

	s := newTestSyncer(t, cfg, cr, store, idx, &fakeExtractor{})
	if _, err := s.SyncBoard(context.Background(), domain.BoardAnnouncement, 1, false); err == nil {
		t.Fatal("expected error from index failure")
	}
	if store.boards[domain.BoardAnnouncement].LastSync != nil {
		t.Error("watermark must not advance on index failure")
	}
}

func TestSyncForcesChemotherapyAfterNewAnnouncement(t *testing.T) {
	cfg := testConfig(t)
	store := newMemStore()
	idx := &memIndex{}

	attPath := filepath.Join(cfg.RawDir(), "regimen.xlsx")
	cr := &fakeCrawler{posts: map[string][]domain.Post{
		domain.BoardAnnouncement: {announcementPost(strings.Repeat("새 공고 본문. ", 20))},
		domain.BoardChemotherapy: {{
			BoardID: domain.BoardChemotherapy,
			PostNo:  "7",
			Title:   "요법 목록",
			Attachments: []domain.Attachment{
				{Filename: "regimen.xlsx", FilePath: attPath},
			},
		}},
	}}
	ex := &fakeExtractor{texts: map[string]string{
		attPath: strings.Repeat("급여기준: 요법별 급여 적용 조건 안내. ", 10),
	}}

	// Pre-record the chemo attachment so only a forced pass reprocesses it.
	if err := store.RecordFile(domain.BoardChemotherapy, "7", "regimen.xlsx", attPath, "이전 추출 텍스트"); err != nil {
		t.Fatal(err)
	}

	s := newTestSyncer(t, cfg, cr, store, idx, ex)
	results, err := s.Sync(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}

	chemo := results[domain.BoardChemotherapy]
	if chemo.SkippedFiles != 0 || chemo.NewDocuments == 0 {
		t.Errorf("chemo board should have been force-reprocessed, got %+v", chemo)
	}
	if store.globalSync == nil {
		t.Error("global watermark not recorded")
	}
}

func TestSyncBoardEmptyExtraction(t *testing.T) {
	cfg := testConfig(t)
	store := newMemStore()
	idx := &memIndex{}
	post := domain.Post{
		BoardID: domain.BoardChemotherapy,
		PostNo:  "9",
		Title:   "공고",
		Attachments: []domain.Attachment{
			{Filename: "scan.hwp", FilePath: filepath.Join(cfg.RawDir(), "scan.hwp")},
		},
	}
	cr := &fakeCrawler{posts: map[string][]domain.Post{domain.BoardChemotherapy: {post}}}

	s := newTestSyncer(t, cfg, cr, store, idx, &fakeExtractor{})
	res, err := s.SyncBoard(context.Background(), domain.BoardChemotherapy, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewDocuments != 0 {
		t.Errorf("no text means no chunks, got %+v", res)
	}
	if store.IsProcessed(domain.BoardChemotherapy, "9", "scan.hwp") {
		t.Error("failed extraction must not be recorded as processed")
	}
	// Watermark still advances; the board itself synced fine.
	if store.boards[domain.BoardChemotherapy].LastSync == nil {
		t.Error("board watermark missing")
	}
}
