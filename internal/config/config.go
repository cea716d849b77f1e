// Package config loads schemakb configuration from YAML with environment
// overrides. A .env file next to the config is loaded first so secrets
// never need to live in the YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"schemakb/internal/catalog"
	"schemakb/internal/embedding"
	"schemakb/internal/sqlparse"
)

// Config holds all schemakb configuration.
type Config struct {
	Sources   []Source        `yaml:"sources"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Query     QueryConfig     `yaml:"query"`
	Logging   LoggingConfig   `yaml:"logging"`

	// DocsDir is where the docs command writes per-table markdown.
	DocsDir string `yaml:"docs_dir"`
}

// Source is one SQL dump to ingest.
type Source struct {
	Path        string `yaml:"path"`
	Dialect     string `yaml:"dialect"`
	Database    string `yaml:"database"`
	Description string `yaml:"description"`
}

// StoreConfig configures the SQLite sink.
type StoreConfig struct {
	Path             string `yaml:"path"`
	WriteParallelism int    `yaml:"write_parallelism"`
}

// EmbeddingConfig configures the optional embedding engine.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIModel     string `yaml:"genai_model"`
	TaskType       string `yaml:"task_type"`

	// APIKey comes from the environment, never from YAML.
	APIKey string `yaml:"-"`
}

// CatalogConfig configures ownership and tagging.
type CatalogConfig struct {
	DefaultOwner *OwnerConfig `yaml:"default_owner"`
	OwnerRules   []OwnerRule  `yaml:"owner_rules"`
	Tags         []TagConfig  `yaml:"tags"`
	TagRules     []TagRule    `yaml:"tag_rules"`
	Heuristics   bool         `yaml:"heuristics"`
}

// OwnerConfig names a table owner.
type OwnerConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// OwnerRule assigns an owner to tables matching a glob pattern.
type OwnerRule struct {
	Pattern string      `yaml:"pattern"`
	Owner   OwnerConfig `yaml:"owner"`
}

// TagConfig declares a vocabulary tag.
type TagConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// TagRule attaches a tag to tables matching a pattern.
type TagRule struct {
	Pattern string `yaml:"pattern"`
	Tag     string `yaml:"tag"`
}

// QueryConfig configures retrieval.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:             "data/schemakb.db",
			WriteParallelism: 4,
		},
		Embedding: EmbeddingConfig{
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "RETRIEVAL_DOCUMENT",
		},
		Catalog: CatalogConfig{
			Heuristics: true,
		},
		Query: QueryConfig{
			TopK: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		DocsDir: "docs/schema",
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. A .env file in the working directory is applied first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.APIKey = key
		if c.Embedding.Provider == "" {
			c.Embedding.Provider = "genai"
		}
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}
	if provider := os.Getenv("SCHEMAKB_EMBEDDING_PROVIDER"); provider != "" {
		c.Embedding.Provider = provider
	}
	if path := os.Getenv("SCHEMAKB_DB"); path != "" {
		c.Store.Path = path
	}
	if level := os.Getenv("SCHEMAKB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if topK := os.Getenv("SCHEMAKB_TOP_K"); topK != "" {
		if n, err := strconv.Atoi(topK); err == nil && n > 0 {
			c.Query.TopK = n
		}
	}
}

func (c *Config) validate() error {
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
		if src.Database == "" {
			return fmt.Errorf("sources[%d]: database name is required", i)
		}
		if _, err := sqlparse.ParseDialect(src.Dialect); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	if c.Store.WriteParallelism < 1 {
		c.Store.WriteParallelism = 1
	}
	return nil
}

// CatalogOptions converts the catalog section to build options.
func (c *Config) CatalogOptions() catalog.Options {
	opts := catalog.Options{Heuristics: c.Catalog.Heuristics}
	if c.Catalog.DefaultOwner != nil {
		opts.DefaultOwner = &catalog.Owner{
			Name:  c.Catalog.DefaultOwner.Name,
			Email: c.Catalog.DefaultOwner.Email,
		}
	}
	for _, rule := range c.Catalog.OwnerRules {
		opts.OwnerRules = append(opts.OwnerRules, catalog.OwnerRule{
			Pattern: rule.Pattern,
			Owner:   catalog.Owner{Name: rule.Owner.Name, Email: rule.Owner.Email},
		})
	}
	for _, tag := range c.Catalog.Tags {
		opts.Tags = append(opts.Tags, catalog.Tag{Name: tag.Name, Description: tag.Description})
	}
	for _, rule := range c.Catalog.TagRules {
		opts.TagRules = append(opts.TagRules, catalog.TagRule{Pattern: rule.Pattern, Tag: rule.Tag})
	}
	return opts
}

// EmbeddingOptions converts the embedding section to engine config.
func (c *Config) EmbeddingOptions() embedding.Config {
	return embedding.Config{
		Provider:       c.Embedding.Provider,
		OllamaEndpoint: c.Embedding.OllamaEndpoint,
		OllamaModel:    c.Embedding.OllamaModel,
		GenAIAPIKey:    c.Embedding.APIKey,
		GenAIModel:     c.Embedding.GenAIModel,
		TaskType:       c.Embedding.TaskType,
	}
}
