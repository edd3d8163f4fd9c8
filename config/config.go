package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the reimbursement chatbot engine.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Boards    []BoardConfig   `yaml:"boards"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig holds on-disk layout settings.
type DataConfig struct {
	Dir           string `yaml:"dir"`            // root data directory
	MetadataStore string `yaml:"metadata_store"` // "json" or "bolt"
}

// BoardConfig describes one crawled board. Type "announcement" boards have
// post body text; "attachment" boards are attachment-only.
type BoardConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ChunkingConfig holds chunker settings. The chunk_size/chunk_overlap pair
// sizes the medical chunker used on attachments; body_chunk_size/
// body_chunk_overlap size the generic splitter used on post body text.
type ChunkingConfig struct {
	ChunkSize        int `yaml:"chunk_size"`
	ChunkOverlap     int `yaml:"chunk_overlap"`
	BodyChunkSize    int `yaml:"body_chunk_size"`
	BodyChunkOverlap int `yaml:"body_chunk_overlap"`
	MinSectionLen    int `yaml:"min_section_len"`
	MinResidualLen   int `yaml:"min_residual_len"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"` // environment variable holding the key
	Timeout   time.Duration `yaml:"timeout"`
}

// SearchConfig holds hybrid search weights and bonuses.
type SearchConfig struct {
	VectorWeight  float64 `yaml:"vector_weight"`
	KeywordWeight float64 `yaml:"keyword_weight"`
	DrugBonus     float64 `yaml:"drug_bonus"`
	DiseaseBonus  float64 `yaml:"disease_bonus"`
	KeywordBonus  float64 `yaml:"keyword_bonus"`
	DefaultLimit  int     `yaml:"default_limit"`
}

// SyncConfig holds ingestion settings.
type SyncConfig struct {
	PostLimit int           `yaml:"post_limit"` // posts per board in a full sync
	Timeout   time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration: the two HIRA boards,
// medical-document chunk sizing and the observed hybrid search weights.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:           "data",
			MetadataStore: "json",
		},
		Boards: []BoardConfig{
			{ID: "HIRAA030023010000", Name: "공고 게시판", Type: "announcement"},
			{ID: "HIRAA030023030000", Name: "항암화학요법 게시판", Type: "attachment"},
		},
		Chunking: ChunkingConfig{
			ChunkSize:        1500,
			ChunkOverlap:     300,
			BodyChunkSize:    1000,
			BodyChunkOverlap: 200,
			MinSectionLen:    50,
			MinResidualLen:   100,
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			Model:     "text-embedding-ada-002",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Timeout:   60 * time.Second,
		},
		Search: SearchConfig{
			VectorWeight:  0.7,
			KeywordWeight: 0.3,
			DrugBonus:     0.2,
			DiseaseBonus:  0.2,
			KeywordBonus:  0.1,
			DefaultLimit:  5,
		},
		Sync: SyncConfig{
			PostLimit: 1,
			Timeout:   5 * time.Minute,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file layered over the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for hirarag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "hirarag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Board returns the configured board with the given id.
func (c *Config) Board(id string) (BoardConfig, bool) {
	for _, b := range c.Boards {
		if b.ID == id {
			return b, true
		}
	}
	return BoardConfig{}, false
}

// RawDir returns the directory holding downloaded attachments.
func (c *Config) RawDir() string { return filepath.Join(c.Data.Dir, "raw") }

// TextDir returns the directory holding materialized post body text files.
func (c *Config) TextDir() string { return filepath.Join(c.Data.Dir, "text") }

// VectorDir returns the on-disk location of the vector index.
func (c *Config) VectorDir() string { return filepath.Join(c.Data.Dir, "vector") }

// MetadataPath returns the path of the metadata aggregate file.
func (c *Config) MetadataPath() string {
	if c.Data.MetadataStore == "bolt" {
		return filepath.Join(c.Data.Dir, "metadata.db")
	}
	return filepath.Join(c.Data.Dir, "metadata.json")
}

// EnsureDirs creates the data directory layout.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Data.Dir, c.RawDir(), c.TextDir(), c.VectorDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
