package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Boards) != 2 {
		t.Fatalf("boards = %d, want 2", len(cfg.Boards))
	}
	if _, ok := cfg.Board("HIRAA030023010000"); !ok {
		t.Error("announcement board missing")
	}
	if _, ok := cfg.Board("HIRAA030023030000"); !ok {
		t.Error("chemotherapy board missing")
	}

	if cfg.Chunking.ChunkSize != 1500 || cfg.Chunking.ChunkOverlap != 300 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Search.VectorWeight != 0.7 || cfg.Search.KeywordWeight != 0.3 {
		t.Errorf("search weights = %+v", cfg.Search)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.DefaultLimit != 5 {
		t.Errorf("default limit = %d", cfg.Search.DefaultLimit)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hirarag.yaml")
	yaml := "search:\n  vector_weight: 0.5\nserver:\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.VectorWeight != 0.5 {
		t.Errorf("vector weight = %v", cfg.Search.VectorWeight)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Search.KeywordWeight != 0.3 {
		t.Errorf("keyword weight = %v", cfg.Search.KeywordWeight)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("boards: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hirarag.yaml")

	cfg := DefaultConfig()
	cfg.Data.Dir = filepath.Join(dir, "data")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Data.Dir != cfg.Data.Dir {
		t.Errorf("data dir = %q", loaded.Data.Dir)
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.Dir = "/tmp/hira"

	if got := cfg.RawDir(); got != filepath.Join("/tmp/hira", "raw") {
		t.Errorf("raw dir = %q", got)
	}
	if got := cfg.MetadataPath(); got != filepath.Join("/tmp/hira", "metadata.json") {
		t.Errorf("metadata path = %q", got)
	}
	cfg.Data.MetadataStore = "bolt"
	if got := cfg.MetadataPath(); got != filepath.Join("/tmp/hira", "metadata.db") {
		t.Errorf("bolt metadata path = %q", got)
	}
}

func TestEnsureDirs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.Dir = filepath.Join(t.TempDir(), "data")
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{cfg.RawDir(), cfg.TextDir(), cfg.VectorDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("missing dir %s", dir)
		}
	}
}
