package chunker

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"hirarag/internal/domain"
)

// SectionRule recognizes one named section of a reimbursement notice by
// any of its heading variants. Rules run in slice order and each section
// takes the first match in the text.
type SectionRule struct {
	Name     string
	Headings []string

	re *regexp.Regexp
}

// SectionResidual collects text not claimed by any rule.
const SectionResidual = "기타"

// DefaultSectionRules is the section layout of HIRA anti-cancer
// reimbursement notices.
var DefaultSectionRules = []SectionRule{
	{Name: "급여기준", Headings: []string{"급여기준", "보험급여", "급여인정", "급여기준인정"}},
	{Name: "적응증", Headings: []string{"적응증", "적응질환", "치료대상"}},
	{Name: "용량", Headings: []string{"용량", "투여량", "용법용량"}},
	{Name: "투여방법", Headings: []string{"투여방법", "투여경로", "주사방법"}},
	{Name: "주의사항", Headings: []string{"주의사항", "주의", "경고"}},
	{Name: "부작용", Headings: []string{"부작용", "부정반응", "이상반응"}},
	{Name: "상호작용", Headings: []string{"상호작용", "약물상호작용", "약물간상호작용"}},
}

// compile builds the section matcher: from a heading variant, non-greedily
// through to the next blank line, subsection marker or end of text.
func (r *SectionRule) compile() *regexp.Regexp {
	if r.re == nil {
		pat := `(?is)(?:` + strings.Join(quoteAll(r.Headings), "|") + `).*?(?:\n\n|\n### |$)`
		r.re = regexp.MustCompile(pat)
	}
	return r.re
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// MedicalChunker normalizes terminology, carves a document into named
// sections and splits each section into bounded overlapping chunks.
type MedicalChunker struct {
	splitter     *RecursiveSplitter
	sectionRules []SectionRule
	termRules    []TermRule
	minSection   int
	minResidual  int
	log          zerolog.Logger
}

// Option tweaks a MedicalChunker.
type Option func(*MedicalChunker)

// WithSectionRules replaces the default section table.
func WithSectionRules(rules []SectionRule) Option {
	return func(c *MedicalChunker) { c.sectionRules = rules }
}

// WithTermRules replaces the default term normalization table.
func WithTermRules(rules []TermRule) Option {
	return func(c *MedicalChunker) { c.termRules = rules }
}

// NewMedicalChunker builds a chunker with the given split bounds.
// minSection drops sections shorter than that many runes; minResidual is
// the threshold below which unclaimed text is discarded instead of being
// filed under the residual section.
func NewMedicalChunker(chunkSize, overlap, minSection, minResidual int, log zerolog.Logger, opts ...Option) *MedicalChunker {
	c := &MedicalChunker{
		splitter:     NewRecursiveSplitter(chunkSize, overlap, DefaultSeparators),
		sectionRules: DefaultSectionRules,
		termRules:    DefaultTermRules,
		minSection:   minSection,
		minResidual:  minResidual,
		log:          log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chunk runs the full pipeline: term normalization, section extraction,
// then per-section splitting. ChunkIndex runs across the whole document;
// TotalChunks counts the chunks of the owning section.
func (c *MedicalChunker) Chunk(text string, src domain.SourceInfo) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	normalized := NormalizeTerms(text, c.termRules)
	sections := c.extractSections(normalized)

	var chunks []domain.Chunk
	chunkIndex := 0
	for _, sec := range sections {
		if len([]rune(strings.TrimSpace(sec.content))) < c.minSection {
			continue
		}
		parts := c.splitter.Split(sec.content)
		for _, part := range parts {
			chunks = append(chunks, domain.Chunk{
				Content:     part,
				Source:      src,
				Section:     sec.name,
				ChunkIndex:  chunkIndex,
				TotalChunks: len(parts),
			})
			chunkIndex++
		}
	}

	c.log.Debug().
		Str("filename", src.Filename).
		Int("chunks", len(chunks)).
		Msg("document chunked")
	return chunks, nil
}

type section struct {
	name    string
	content string
}

// extractSections assigns text to sections in rule order, each section
// taking its first match. Whatever no rule claimed becomes the residual
// section when it is long enough to matter.
func (c *MedicalChunker) extractSections(text string) []section {
	var out []section
	var claimed []string

	for i := range c.sectionRules {
		rule := &c.sectionRules[i]
		m := rule.compile().FindString(text)
		if m == "" {
			continue
		}
		body := strings.TrimSuffix(strings.TrimSuffix(m, "\n### "), "\n\n")
		out = append(out, section{name: rule.Name, content: body})
		claimed = append(claimed, m)
	}

	remaining := text
	for _, m := range claimed {
		remaining = strings.ReplaceAll(remaining, m, "")
	}
	remaining = strings.TrimSpace(remaining)
	if len([]rune(remaining)) > c.minResidual {
		out = append(out, section{name: SectionResidual, content: remaining})
	}

	return out
}
