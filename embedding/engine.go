// Package embedding provides vector embedding generation for similarity
// search. Supported backends: Ollama (local), an OpenAI-compatible endpoint,
// and Google Gemini.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int

	// Name returns the engine name for event metadata.
	Name() string
}

// ErrDimensionMismatch is returned when comparing vectors of unequal length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Config holds embedding engine initialization parameters.
type Config struct {
	// Provider selects the backend: "ollama", "openai", "gemini", or ""
	// to disable embeddings (similarity search degrades to keyword scoring).
	Provider string `json:"provider,omitempty"`

	// Ollama settings.
	OllamaEndpoint string `json:"ollama_endpoint,omitempty"`
	OllamaModel    string `json:"ollama_model,omitempty"`

	// OpenAI-compatible settings. APIKey falls back to OPENAI_API_KEY.
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty"`

	// Gemini settings. APIKey falls back to GEMINI_API_KEY.
	GeminiModel string `json:"gemini_model,omitempty"`

	// APIKey for the selected cloud provider. Usually supplied via
	// environment rather than the config file.
	APIKey string `json:"-"`
}

// DefaultConfig returns the default embedding configuration (disabled).
func DefaultConfig() Config {
	return Config{
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		OpenAIModel:    "text-embedding-3-small",
		GeminiModel:    "gemini-embedding-001",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.OllamaEndpoint != "" {
		c.OllamaEndpoint = source.OllamaEndpoint
	}
	if source.OllamaModel != "" {
		c.OllamaModel = source.OllamaModel
	}
	if source.OpenAIBaseURL != "" {
		c.OpenAIBaseURL = source.OpenAIBaseURL
	}
	if source.OpenAIModel != "" {
		c.OpenAIModel = source.OpenAIModel
	}
	if source.GeminiModel != "" {
		c.GeminiModel = source.GeminiModel
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}

// NewEngine creates an embedding engine from configuration. Returns a nil
// Engine when Provider is empty, indicating embeddings are disabled.
func NewEngine(cfg *Config) (Engine, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "ollama":
		return NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel), nil
	case "openai":
		return NewOpenAIEngine(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.APIKey)
	case "gemini":
		return NewGeminiEngine(cfg.APIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction and
// 0 means orthogonal.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
