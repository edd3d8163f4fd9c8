// Package retriever implements the retrieval side of the pipeline: query
// analysis, file-level keyword scoring and the hybrid merge of vector and
// keyword results.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"hirarag/config"
	"hirarag/internal/domain"
	"hirarag/internal/port"
)

// HybridSearcher combines vector similarity and keyword matching. Either
// leg failing degrades that leg to empty rather than failing the search,
// so a missing index still yields keyword results and vice versa.
type HybridSearcher struct {
	index    port.VectorIndex
	keyword  *KeywordSearcher
	analyzer *QueryAnalyzer
	weights  config.SearchConfig
	log      zerolog.Logger
}

func NewHybridSearcher(index port.VectorIndex, keyword *KeywordSearcher, analyzer *QueryAnalyzer, weights config.SearchConfig, log zerolog.Logger) *HybridSearcher {
	return &HybridSearcher{
		index:    index,
		keyword:  keyword,
		analyzer: analyzer,
		weights:  weights,
		log:      log,
	}
}

// Search runs both legs concurrently with 2x oversampling, merges them at
// the configured weights and re-ranks with entity bonuses.
//
// Merge identity is boardId_postNo_chunkIndex. Keyword hits are file-level
// and always use chunk index 0, so a keyword hit only fuses with the first
// chunk of a post's vector hits; later chunks keep their own entries. This
// granularity mismatch is inherited behavior and kept as is.
func (h *HybridSearcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = h.weights.DefaultLimit
	}

	analysis := h.analyzer.Analyze(query)
	h.log.Debug().Str("query", query).Str("type", analysis.Type).Msg("query analyzed")

	var (
		wg             sync.WaitGroup
		vectorResults  []domain.SearchResult
		keywordResults []domain.SearchResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := h.index.SimilaritySearch(ctx, query, limit*2)
		if err != nil {
			h.log.Warn().Err(err).Msg("vector leg failed, continuing keyword-only")
			return
		}
		vectorResults = res
	}()
	go func() {
		defer wg.Done()
		keywordResults = h.keyword.Search(query, limit*2)
	}()
	wg.Wait()

	merged := h.merge(vectorResults, keywordResults)
	h.applyBonuses(merged, analysis)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	h.log.Info().
		Str("query", query).
		Int("vector", len(vectorResults)).
		Int("keyword", len(keywordResults)).
		Int("results", len(merged)).
		Msg("hybrid search done")
	return merged, nil
}

func mergeKey(r domain.SearchResult) string {
	return fmt.Sprintf("%s_%s_%d", r.Source.BoardID, r.Source.PostNo, r.ChunkIndex)
}

func (h *HybridSearcher) merge(vector, keyword []domain.SearchResult) []domain.SearchResult {
	combined := make(map[string]*domain.SearchResult)
	var order []string

	for _, r := range vector {
		r.Score *= h.weights.VectorWeight
		key := mergeKey(r)
		cp := r
		combined[key] = &cp
		order = append(order, key)
	}

	for _, r := range keyword {
		key := mergeKey(r) // keyword hits carry chunk index 0
		if existing, ok := combined[key]; ok {
			existing.Score += r.Score * h.weights.KeywordWeight
			existing.SearchType = domain.SearchTypeHybrid
			continue
		}
		r.Score *= h.weights.KeywordWeight
		cp := r
		combined[key] = &cp
		order = append(order, key)
	}

	out := make([]domain.SearchResult, 0, len(order))
	for _, key := range order {
		out = append(out, *combined[key])
	}
	return out
}

// applyBonuses adds flat per-entity bonuses for every query entity found
// in a result's content. Bonuses are uncapped.
func (h *HybridSearcher) applyBonuses(results []domain.SearchResult, analysis domain.QueryAnalysis) {
	for i := range results {
		bonus := 0.0
		for _, drug := range analysis.Drugs {
			if strings.Contains(results[i].Content, drug) {
				bonus += h.weights.DrugBonus
			}
		}
		for _, disease := range analysis.Diseases {
			if strings.Contains(results[i].Content, disease) {
				bonus += h.weights.DiseaseBonus
			}
		}
		for _, keyword := range analysis.Keywords {
			if strings.Contains(results[i].Content, keyword) {
				bonus += h.weights.KeywordBonus
			}
		}
		results[i].Score += bonus
	}
}

// SearchBySection restricts retrieval to chunks of one named section by
// oversampling the vector leg 3x and filtering on chunk metadata.
func (h *HybridSearcher) SearchBySection(ctx context.Context, query, section string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = 3
	}

	hits, err := h.index.SimilaritySearch(ctx, query, limit*3)
	if err != nil {
		h.log.Warn().Err(err).Str("section", section).Msg("section search failed")
		return nil, nil
	}

	var out []domain.SearchResult
	for _, r := range hits {
		if r.Section != section {
			continue
		}
		r.SearchType = domain.SearchTypeSection
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
