package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewRecursiveSplitter(100, 20, nil)
	got := s.Split("짧은 문서입니다.")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "짧은 문서입니다." {
		t.Errorf("unexpected chunk content: %q", got[0])
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewRecursiveSplitter(100, 20, nil)
	if got := s.Split("   \n\n  "); got != nil {
		t.Errorf("expected nil for whitespace input, got %v", got)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("급여기준은 다음과 같이 적용한다.\n")
	}
	s := NewRecursiveSplitter(200, 40, nil)
	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 200 {
			t.Errorf("chunk %d exceeds size: %d runes", i, n)
		}
	}
}

func TestSplitOverlapPlusLargePieceStaysBounded(t *testing.T) {
	// A short line retained as overlap followed by a near-limit line must
	// not push the next chunk past the size bound.
	text := strings.Repeat("가", 30) + "\n" + strings.Repeat("나", 180) + "\n" + strings.Repeat("다", 10)
	s := NewRecursiveSplitter(200, 50, []string{"\n"})
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 200 {
			t.Errorf("chunk %d exceeds size: %d runes", i, n)
		}
	}
	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, strings.Repeat("나", 180)) || !strings.Contains(joined, strings.Repeat("다", 10)) {
		t.Error("content lost while shedding overlap")
	}
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("가", 120)
	para2 := strings.Repeat("나", 120)
	s := NewRecursiveSplitter(150, 0, nil)
	chunks := s.Split(para1 + "\n\n" + para2)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "가") || !strings.HasPrefix(chunks[1], "나") {
		t.Errorf("paragraphs split mid-boundary: %q / %q", chunks[0][:9], chunks[1][:9])
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, "투여 대상 환자의 기준을 정한다. ")
	}
	s := NewRecursiveSplitter(120, 60, nil)
	chunks := s.Split(strings.Join(sentences, ""))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// With overlap, consecutive chunks share sentence material.
	for i := 1; i < len(chunks); i++ {
		head := []rune(chunks[i])
		if !strings.Contains(chunks[i-1], string(head[:10])) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestSplitNoSeparatorFallsBackToWindows(t *testing.T) {
	text := strings.Repeat("가", 500)
	s := NewRecursiveSplitter(200, 50, nil)
	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected windowed chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 200 {
			t.Errorf("chunk %d exceeds size: %d runes", i, n)
		}
	}
}
