package orchestrator

import (
	orchconfig "github.com/tailored-agentic-units/foreman/orchestrate/config"
)

// Config controls command handling.
type Config struct {
	// Name is the identity the orchestrator uses on the hub.
	Name string `json:"name"`

	// Parallel tunes the agent fan-out. FailFast is forced off at
	// dispatch time; a failing specialist never discards the others.
	Parallel orchconfig.ParallelConfig `json:"parallel"`

	// Chain tunes the post-reply recording pipeline.
	Chain orchconfig.ChainConfig `json:"chain"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:     "orchestrator",
		Parallel: orchconfig.DefaultParallelConfig(),
		Chain:    orchconfig.DefaultChainConfig(),
	}
}

func (c *Config) Merge(other *Config) *Config {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.Name != "" {
		merged.Name = other.Name
	}
	merged.Parallel.Merge(&other.Parallel)
	merged.Chain.Merge(&other.Chain)
	return &merged
}
