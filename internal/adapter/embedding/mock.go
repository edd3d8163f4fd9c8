package embedding

import "context"

// MockEmbedder produces deterministic vectors from rune values. Unrelated
// texts typically land far apart, shared prefixes land close, which is
// enough for exercising the index and the hybrid merge in tests.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 128
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	for j, r := range []rune(text) {
		if j >= e.dimension {
			break
		}
		vec[j] = float32(r) / 1000.0
	}
	return vec, nil
}

func (e *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}
