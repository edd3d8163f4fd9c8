// Package embedding provides the OpenAI-compatible embedder behind the
// vector index, plus a deterministic mock for tests and offline runs.
package embedding

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"hirarag/internal/port"
)

// NewOpenAIEmbedder builds an embedder against any OpenAI-compatible
// endpoint. It returns nil without error when apiKey is empty: the caller
// runs in degraded keyword-only mode and the vector index reports
// IndexDisabled.
func NewOpenAIEmbedder(apiKey, baseURL, model string, log zerolog.Logger) (port.Embedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		log.Warn().Msg("no embedding API key configured, vector search disabled")
		return nil, nil
	}

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(apiKey, "Bearer ")),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	log.Info().Str("model", model).Msg("embedding client ready")
	return embedder, nil
}
