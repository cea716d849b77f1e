// Package embedding generates vector embeddings for entity descriptions.
// Supports two backends: Ollama (local) and Google GenAI (cloud).
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimensionality of embeddings.
	Dimensions() int

	// Name returns the engine name.
	Name() string
}

// HealthChecker is an optional interface for engines that can verify the
// backing service is reachable before a batch run.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "ollama" or "genai". Empty disables embeddings.
	Provider string `yaml:"provider"`

	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`

	GenAIAPIKey string `yaml:"-"`
	GenAIModel  string `yaml:"genai_model"`

	// TaskType for GenAI, e.g. "RETRIEVAL_DOCUMENT" or "RETRIEVAL_QUERY".
	TaskType string `yaml:"task_type"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:       "",
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		GenAIModel:     "gemini-embedding-001",
		TaskType:       "RETRIEVAL_DOCUMENT",
	}
}

// NewEngine creates an embedding engine based on configuration.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel)
	case "genai":
		return NewGenAIEngine(cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q (use 'ollama' or 'genai')", cfg.Provider)
	}
}

// CosineSimilarity computes cosine similarity between two vectors. Vectors
// of different dimensions or zero magnitude score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
