package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func TestExtractTXT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notice.txt")
	if err := os.WriteFile(path, []byte("급여기준 변경 안내\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := New(zerolog.Nop()).ExtractText(path)
	if got != "급여기준 변경 안내" {
		t.Errorf("got %q", got)
	}
}

func TestExtractMissingFile(t *testing.T) {
	got := New(zerolog.Nop()).ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notice.hwp")
	if err := os.WriteFile(path, []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := New(zerolog.Nop()).ExtractText(path); got != "" {
		t.Errorf("expected empty string for hwp, got %q", got)
	}
}

func TestExtractXLSXHeaderValueLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "criteria.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "약제명")
	f.SetCellValue(sheet, "B1", "급여여부")
	f.SetCellValue(sheet, "A2", "키트루다")
	f.SetCellValue(sheet, "B2", "급여")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got := New(zerolog.Nop()).ExtractText(path)
	if !strings.Contains(got, "약제명: 키트루다") {
		t.Errorf("missing header:value line in %q", got)
	}
	if !strings.Contains(got, "급여여부: 급여") {
		t.Errorf("missing header:value line in %q", got)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := New(zerolog.Nop()).ExtractText(path); got != "" {
		t.Errorf("expected empty string for corrupt pdf, got %q", got)
	}
}
