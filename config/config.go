package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ChromaConfig contains connection details for the Chroma vector database.
type ChromaConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "ollama" or "gemini"
	OllamaURL string `yaml:"ollama_url"`
	Model     string `yaml:"model"`
}

// GenerationConfig configures the primary and secondary answer providers.
// The secondary is any OpenAI-compatible endpoint; it is deliberately a
// lower-capability model that only serves when the primary model is gone.
type GenerationConfig struct {
	Model          string `yaml:"model"`
	FallbackModel  string `yaml:"fallback_model"`
	FallbackURL    string `yaml:"fallback_url"` // empty means api.openai.com
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds the tunables of the context retriever. The
// confidence threshold and shrink ratio are configuration on purpose: they
// have no principled derivation and should be re-validated against real
// precision/recall data before being trusted.
type RetrievalConfig struct {
	BaseResultCount          int     `yaml:"base_result_count"`
	MaxResultCount           int     `yaml:"max_result_count"`
	LongQueryTokenThreshold  int     `yaml:"long_query_token_threshold"`
	ConfidenceThreshold      float64 `yaml:"confidence_threshold"`
	LowConfidenceKeepRatio   float64 `yaml:"low_confidence_keep_ratio"`
	ContextTokenBudget       int     `yaml:"context_token_budget"`
	CacheSize                int     `yaml:"cache_size"`
	CacheTTLSeconds          int     `yaml:"cache_ttl_seconds"`
	SmallCollectionThreshold int     `yaml:"small_collection_threshold"`
}

// SectionsConfig bounds the multi-section artifact fan-out.
type SectionsConfig struct {
	Workers        int `yaml:"workers"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// IngestConfig configures the plain-text document watcher.
type IngestConfig struct {
	WatchDir     string `yaml:"watch_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// Config is the root configuration, read once at startup and treated as
// read-only afterwards. Secrets (GEMINI_API_KEY, OPENAI_API_KEY) come from
// the environment, never from this file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Chroma     ChromaConfig     `yaml:"chroma"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Sections   SectionsConfig   `yaml:"sections"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// Load reads a config from the specified path. If the file does not exist,
// the defaults alone are returned: they describe a working local setup with
// Chroma and Ollama on localhost.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// GenerationTimeout returns the per-call deadline for generation requests.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a cached retrieval stays valid.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Retrieval.CacheTTLSeconds) * time.Second
}

// SectionTimeout returns the per-section deadline for artifact fan-out.
func (c *Config) SectionTimeout() time.Duration {
	return time.Duration(c.Sections.TimeoutSeconds) * time.Second
}

// ContextCharBudget is the character budget for assembled context, derived
// from the token budget at roughly four characters per token.
func (c *Config) ContextCharBudget() int {
	return 4 * c.Retrieval.ContextTokenBudget
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Chroma.URL == "" {
		cfg.Chroma.URL = "http://localhost:8000"
	}
	if cfg.Chroma.Collection == "" {
		cfg.Chroma.Collection = "finsight-docs"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case "gemini":
			cfg.Embedding.Model = "gemini-embedding-001"
		default:
			cfg.Embedding.Model = "nomic-embed-text:v1.5"
		}
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gemini-2.5-flash"
	}
	if cfg.Generation.FallbackModel == "" {
		cfg.Generation.FallbackModel = "gpt-4o-mini"
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}
	if cfg.Retrieval.BaseResultCount == 0 {
		cfg.Retrieval.BaseResultCount = 5
	}
	if cfg.Retrieval.MaxResultCount == 0 {
		cfg.Retrieval.MaxResultCount = 10
	}
	if cfg.Retrieval.LongQueryTokenThreshold == 0 {
		cfg.Retrieval.LongQueryTokenThreshold = 80
	}
	if cfg.Retrieval.ConfidenceThreshold == 0 {
		cfg.Retrieval.ConfidenceThreshold = 0.35
	}
	if cfg.Retrieval.LowConfidenceKeepRatio == 0 {
		cfg.Retrieval.LowConfidenceKeepRatio = 0.5
	}
	if cfg.Retrieval.ContextTokenBudget == 0 {
		cfg.Retrieval.ContextTokenBudget = 1500
	}
	if cfg.Retrieval.CacheSize == 0 {
		cfg.Retrieval.CacheSize = 256
	}
	if cfg.Retrieval.CacheTTLSeconds == 0 {
		cfg.Retrieval.CacheTTLSeconds = 600
	}
	if cfg.Retrieval.SmallCollectionThreshold == 0 {
		cfg.Retrieval.SmallCollectionThreshold = 10
	}
	if cfg.Sections.Workers == 0 {
		cfg.Sections.Workers = 4
	}
	if cfg.Sections.TimeoutSeconds == 0 {
		cfg.Sections.TimeoutSeconds = 30
	}
	if cfg.Ingest.WatchDir == "" {
		cfg.Ingest.WatchDir = "./documents"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 100
	}
}
