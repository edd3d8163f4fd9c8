package retriever

import (
	"sort"
	"strings"

	"hirarag/internal/domain"
	"hirarag/internal/port"
)

const keywordContentPrefix = 500

// KeywordSearcher scans the extracted text of every recorded file. It
// works at file granularity: a hit covers a whole file and carries a
// fixed-length content prefix, not a precise chunk. Scores are therefore
// occurrence counts, not normalized relevance.
type KeywordSearcher struct {
	store port.MetadataStore
}

func NewKeywordSearcher(store port.MetadataStore) *KeywordSearcher {
	return &KeywordSearcher{store: store}
}

// Search scores each file as 0.1 per token occurrence plus 1.0 when the
// whole query appears verbatim, case-insensitively. Files scoring zero are
// omitted.
func (s *KeywordSearcher) Search(query string, limit int) []domain.SearchResult {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}
	tokens := strings.Fields(queryLower)

	meta := s.store.Metadata()
	keys := make([]string, 0, len(meta.Files))
	for k := range meta.Files {
		keys = append(keys, k)
	}
	// Map order is random; fix it so equal scores rank deterministically.
	sort.Strings(keys)

	var results []domain.SearchResult
	for _, k := range keys {
		file := meta.Files[k]
		if file.TextContent == "" {
			continue
		}
		text := strings.ToLower(file.TextContent)

		score := 0.0
		for _, tok := range tokens {
			score += float64(strings.Count(text, tok)) * 0.1
		}
		if strings.Contains(text, queryLower) {
			score += 1.0
		}
		if score == 0 {
			continue
		}

		results = append(results, domain.SearchResult{
			Content: contentPrefix(file.TextContent, keywordContentPrefix),
			Score:   score,
			Source: domain.SourceInfo{
				BoardID:  file.BoardID,
				PostNo:   file.PostNo,
				Filename: file.Filename,
				FilePath: file.FilePath,
				Type:     "text",
			},
			SearchType: domain.SearchTypeKeyword,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// contentPrefix appends the ellipsis only when the text was actually
// truncated, so short documents keep their exact stored text.
func contentPrefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
