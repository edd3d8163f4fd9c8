package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the separator hierarchy for medical/regulatory
// documents: section markers first, then paragraphs, lines, sentence-final
// punctuation and spaces, with a raw character window as last resort.
var DefaultSeparators = []string{"\n\n## ", "\n\n### ", "\n\n", "\n", ". ", " "}

// RecursiveSplitter splits text into overlapping windows of at most
// chunkSize runes, preferring to break at the earliest separator in its
// hierarchy that occurs in the text. Sizes are counted in runes so Korean
// text is bounded the same way as ASCII.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveSplitter creates a splitter with the given bounds. A zero or
// negative overlap disables overlapping.
func NewRecursiveSplitter(chunkSize, overlap int, separators []string) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: separators,
	}
}

// Split returns the chunk texts for the input, in document order. Empty
// and whitespace-only input yields nil.
func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{strings.TrimSpace(text)}
	}

	// Find the first separator of the hierarchy that occurs in the text.
	sep := ""
	rest := []string{}
	for i, sp := range separators {
		if strings.Contains(text, sp) {
			sep = sp
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.charWindows(text)
	}

	// SplitAfter keeps each separator attached to its piece so chunks
	// reassemble to the original text.
	pieces := strings.SplitAfter(text, sep)

	var chunks []string
	var cur []string
	curLen := 0

	flush := func() {
		if curLen == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(cur, ""))
		if joined != "" {
			chunks = append(chunks, joined)
		}
		// Retain trailing pieces up to the overlap budget.
		for curLen > s.overlap && len(cur) > 0 {
			curLen -= utf8.RuneCountInString(cur[0])
			cur = cur[1:]
		}
	}

	for _, piece := range pieces {
		pLen := utf8.RuneCountInString(piece)
		if pLen == 0 {
			continue
		}

		if pLen > s.chunkSize {
			// A single oversized piece: emit what we have, then recurse
			// with the remaining separators.
			flush()
			cur = nil
			curLen = 0
			chunks = append(chunks, s.split(piece, rest)...)
			continue
		}

		if curLen+pLen > s.chunkSize {
			flush()
			// The retained overlap plus a large incoming piece can still
			// exceed the bound; shed retained pieces until it fits.
			for curLen+pLen > s.chunkSize && len(cur) > 0 {
				curLen -= utf8.RuneCountInString(cur[0])
				cur = cur[1:]
			}
		}
		cur = append(cur, piece)
		curLen += pLen
	}
	if curLen > 0 {
		joined := strings.TrimSpace(strings.Join(cur, ""))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	return chunks
}

// charWindows is the raw fallback: fixed-size rune windows stepping by
// chunkSize − overlap.
func (s *RecursiveSplitter) charWindows(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
