// Package extractor turns downloaded attachment files into plain text.
// Extraction is best effort: a failure or an unsupported format yields an
// empty string, never an error, so a single broken attachment cannot stall
// a board sync.
package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type Extractor struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// ExtractText dispatches on the file extension. HWP, the Korean government
// office format, has no usable Go reader, so those attachments are skipped
// with a warning and only the post body text covers them.
func (e *Extractor) ExtractText(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".xlsx", ".xls":
		return e.extractXLSX(path)
	case ".txt":
		return e.extractTXT(path)
	case ".hwp", ".hwpx":
		e.log.Warn().Str("path", path).Msg("hwp extraction not supported, skipping")
		return ""
	default:
		e.log.Warn().Str("path", path).Msg("unsupported attachment format, skipping")
		return ""
	}
}

func (e *Extractor) extractPDF(path string) string {
	f, err := os.Open(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("pdf open failed")
		return ""
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("pdf stat failed")
		return ""
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("pdf parse failed")
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn().Err(err).Str("path", path).Int("page", i).Msg("pdf page extraction failed")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// extractXLSX flattens every sheet into "header: value" lines so that
// tabular reimbursement criteria remain searchable as prose.
func (e *Extractor) extractXLSX(path string) string {
	f, err := excelize.OpenFile(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("xlsx open failed")
		return ""
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}
		sb.WriteString("## " + sheetName + "\n")

		headers := rows[0]
		for _, row := range rows[1:] {
			for i, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
					sb.WriteString(strings.TrimSpace(headers[i]) + ": " + cell + "\n")
				} else {
					sb.WriteString(cell + "\n")
				}
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func (e *Extractor) extractTXT(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("txt read failed")
		return ""
	}
	return strings.TrimSpace(string(data))
}
