package cli

import (
	"context"
	"fmt"
	"os"

	"hirarag/config"
	"hirarag/internal/adapter/chunker"
	"hirarag/internal/adapter/crawler"
	"hirarag/internal/adapter/embedding"
	"hirarag/internal/adapter/extractor"
	"hirarag/internal/adapter/metastore"
	"hirarag/internal/adapter/retriever"
	"hirarag/internal/adapter/vectorindex"
	"hirarag/internal/port"
	"hirarag/internal/usecase"
)

// app is the fully wired pipeline behind every command.
type app struct {
	cfg      *config.Config
	store    port.MetadataStore
	index    port.VectorIndex
	searcher *usecase.Searcher
	syncer   *usecase.Syncer
	reindex  *usecase.Reindexer
	criteria *usecase.CriteriaAnalyzer
}

func newApp(ctx context.Context) (*app, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create data dirs: %w", err)
	}

	boards := make(map[string]string, len(cfg.Boards))
	for _, b := range cfg.Boards {
		boards[b.ID] = b.Name
	}

	var store port.MetadataStore
	var err error
	if cfg.Data.MetadataStore == "bolt" {
		store, err = metastore.NewBoltStore(cfg.MetadataPath(), boards)
		if err != nil {
			return nil, fmt.Errorf("open metadata store: %w", err)
		}
	} else {
		store = metastore.NewJSONStore(cfg.MetadataPath(), boards)
	}

	var embedder port.Embedder
	if cfg.Embedding.Enabled {
		embedder, err = embedding.NewOpenAIEmbedder(
			os.Getenv(cfg.Embedding.APIKeyEnv),
			cfg.Embedding.BaseURL,
			cfg.Embedding.Model,
			logger,
		)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}

	index := vectorindex.NewChromemIndex(cfg.VectorDir(), embedder, logger)
	if err := index.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init vector index: %w", err)
	}

	docChunker := chunker.NewMedicalChunker(
		cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap,
		cfg.Chunking.MinSectionLen, cfg.Chunking.MinResidualLen, logger)
	bodyChunker := chunker.NewGenericChunker(cfg.Chunking.BodyChunkSize, cfg.Chunking.BodyChunkOverlap)
	ext := extractor.New(logger)
	cr := crawler.NewManifestCrawler(cfg.RawDir(), logger)

	hybrid := retriever.NewHybridSearcher(index,
		retriever.NewKeywordSearcher(store),
		retriever.NewQueryAnalyzer(retriever.DefaultEntityRules()),
		cfg.Search, logger)

	return &app{
		cfg:      cfg,
		store:    store,
		index:    index,
		searcher: usecase.NewSearcher(hybrid, logger),
		syncer:   usecase.NewSyncer(cfg, cr, store, index, ext, docChunker, bodyChunker, logger),
		reindex:  usecase.NewReindexer(cfg, store, index, ext, docChunker, bodyChunker, logger),
		criteria: usecase.NewCriteriaAnalyzer(store, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn().Err(err).Msg("closing metadata store failed")
	}
}
