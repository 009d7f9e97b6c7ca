package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Data: DataConfig{
			ProfilesPath:   "data/profiles.json",
			GroupsPath:     "data/groups.csv",
			EmbeddingsPath: "data/group_embeddings.parquet",
		},
		Embedding: EmbeddingConfig{Model: "intfloat/multilingual-e5-large"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{APIKey: "k", BaseURL: "https://api.example.com/v1/"}}
	cfg.ApplyDefaults()

	if cfg.Resolver.SimilarityThreshold != 0.45 {
		t.Errorf("threshold = %v, want 0.45", cfg.Resolver.SimilarityThreshold)
	}
	if cfg.Resolver.MinDF != 2 {
		t.Errorf("min_df = %d, want 2", cfg.Resolver.MinDF)
	}
	if cfg.Ranking.DefaultTopK != 10 || cfg.Ranking.MaxTopK != 100 {
		t.Errorf("top_k defaults = %d/%d", cfg.Ranking.DefaultTopK, cfg.Ranking.MaxTopK)
	}
	if cfg.Refiner.APIKey != "k" || cfg.Refiner.BaseURL != "https://api.example.com/v1/" {
		t.Errorf("refiner credentials not inherited: %+v", cfg.Refiner)
	}
	if cfg.Cache.Enabled() {
		t.Error("cache must be disabled without addrs")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no profiles", func(c *Config) { c.Data.ProfilesPath = "" }, "data.profiles_path"},
		{"no groups", func(c *Config) { c.Data.GroupsPath = "" }, "data.groups_path"},
		{"no embeddings", func(c *Config) { c.Data.EmbeddingsPath = "" }, "data.embeddings_path"},
		{"threshold above one", func(c *Config) { c.Resolver.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"default above max", func(c *Config) { c.Ranking.DefaultTopK = 500 }, "default_top_k"},
		{"no model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"negative ttl", func(c *Config) { c.Cache.TTLSec = -1 }, "ttl_sec"},
		{"refiner without model", func(c *Config) { c.Refiner.Enabled = true }, "refiner.model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("AUDIENCE_TEST_KEY", "secret")
	doc := `
http:
  port: 8080
data:
  profiles_path: p.json
  groups_path: g.csv
  embeddings_path: e.json
embedding:
  api_key: ${AUDIENCE_TEST_KEY}
  model: ${AUDIENCE_TEST_MODEL:-e5}
cache:
  addrs: ["localhost:6379"]
  ttl_sec: 3600
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Embedding.APIKey != "secret" {
		t.Errorf("api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Model != "e5" {
		t.Errorf("model = %q, want default e5", cfg.Embedding.Model)
	}
	if !cfg.Cache.Enabled() || cfg.Cache.TTL() != time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	if _, err := os.Stat(findConfigPath("local")); err != nil {
		t.Skip("local config not present")
	}
	if _, err := Load("local"); err != nil {
		t.Fatalf("local config must be valid: %v", err)
	}
}
