package memory

import (
	"github.com/tailored-agentic-units/foreman/embedding"
)

// Config holds memory gateway settings.
type Config struct {
	// FactPath is the sqlite file for the categorized fact store.
	FactPath string `json:"fact_path"`

	// VectorPath is the sqlite file for the similarity store. It must be
	// distinct from FactPath.
	VectorPath string `json:"vector_path"`

	// Embedding configures the optional embedding engine used by the
	// similarity store.
	Embedding *embedding.Config `json:"embedding,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	e := embedding.DefaultConfig()
	return &Config{
		FactPath:   "data/facts.db",
		VectorPath: "data/vectors.db",
		Embedding:  &e,
	}
}

// Merge combines the config with another, preferring other's non-zero
// values.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	merged := *c
	if other.FactPath != "" {
		merged.FactPath = other.FactPath
	}
	if other.VectorPath != "" {
		merged.VectorPath = other.VectorPath
	}
	if other.Embedding != nil {
		if merged.Embedding == nil {
			e := *other.Embedding
			merged.Embedding = &e
		} else {
			e := *merged.Embedding
			e.Merge(other.Embedding)
			merged.Embedding = &e
		}
	}
	return &merged
}
