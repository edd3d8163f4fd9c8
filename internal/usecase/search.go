package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hirarag/internal/adapter/retriever"
	"hirarag/internal/domain"
)

// SearchResponse pairs ranked results with the deduplicated list of source
// documents they came from, one entry per post.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
	Sources []domain.SourceInfo   `json:"sources"`
}

// Searcher fronts the hybrid searcher and assembles the source list.
type Searcher struct {
	hybrid *retriever.HybridSearcher
	log    zerolog.Logger
}

func NewSearcher(hybrid *retriever.HybridSearcher, log zerolog.Logger) *Searcher {
	return &Searcher{hybrid: hybrid, log: log}
}

// Search runs the hybrid search and collects sources. The first result of
// each post decides that post's source entry.
func (s *Searcher) Search(ctx context.Context, query string, limit int) (SearchResponse, error) {
	results, err := s.hybrid.Search(ctx, query, limit)
	if err != nil {
		return SearchResponse{}, err
	}

	resp := SearchResponse{Results: results}
	seen := map[string]bool{}
	for _, r := range results {
		key := fmt.Sprintf("%s_%s", r.Source.BoardID, r.Source.PostNo)
		if seen[key] {
			continue
		}
		seen[key] = true
		resp.Sources = append(resp.Sources, r.Source)
	}
	return resp, nil
}

// SearchBySection restricts retrieval to one document section.
func (s *Searcher) SearchBySection(ctx context.Context, query, section string, limit int) ([]domain.SearchResult, error) {
	return s.hybrid.SearchBySection(ctx, query, section, limit)
}
