// Package planner turns raw user input into an execution plan: intent
// classification (which agents, with what parameters) and synthesis of agent
// responses into one reply. Both steps call an external model when a
// provider is configured and degrade to deterministic fallbacks when not.
package planner

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/foreman/core/protocol"
)

// Provider is a chat completion backend.
type Provider interface {
	// Chat sends the conversation and returns the model's reply text.
	Chat(ctx context.Context, messages []protocol.Message) (string, error)

	// Name returns the provider name for event metadata.
	Name() string
}

// Config holds model provider initialization parameters.
type Config struct {
	// Provider selects the backend: "openai", "gemini", or "" to disable
	// model calls (classification and synthesis use fallbacks only).
	Provider string `json:"provider,omitempty"`

	// OpenAI-compatible settings. APIKey falls back to OPENAI_API_KEY.
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty"`

	// Gemini settings. APIKey falls back to GEMINI_API_KEY.
	GeminiModel string `json:"gemini_model,omitempty"`

	// APIKey for the selected provider. Usually supplied via environment
	// rather than the config file.
	APIKey string `json:"-"`
}

// DefaultConfig returns the default provider configuration (disabled).
func DefaultConfig() Config {
	return Config{
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
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

// NewProvider creates a chat provider from configuration. Returns a nil
// Provider when Provider is empty, indicating model calls are disabled.
func NewProvider(cfg *Config) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.APIKey)
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}
