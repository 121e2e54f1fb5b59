package server

import "time"

// Config controls the HTTP listener.
type Config struct {
	Addr            string        `json:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DefaultConfig returns production defaults. WriteTimeout is generous
// because a query may wait on model calls for several agents.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c *Config) Merge(other *Config) *Config {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.Addr != "" {
		merged.Addr = other.Addr
	}
	if other.ReadTimeout > 0 {
		merged.ReadTimeout = other.ReadTimeout
	}
	if other.WriteTimeout > 0 {
		merged.WriteTimeout = other.WriteTimeout
	}
	if other.ShutdownTimeout > 0 {
		merged.ShutdownTimeout = other.ShutdownTimeout
	}
	return &merged
}
