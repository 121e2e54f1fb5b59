package session

// Config holds session initialization parameters.
type Config struct {
	// HistoryLimit caps retained messages per session. Zero keeps all.
	HistoryLimit int `json:"history_limit,omitempty"`

	// MaxSessions caps the number of tracked sessions; the least recently
	// used session is evicted at capacity. Zero disables eviction.
	MaxSessions int `json:"max_sessions,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{HistoryLimit: 50, MaxSessions: 1000}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.HistoryLimit != 0 {
		c.HistoryLimit = source.HistoryLimit
	}
	if source.MaxSessions != 0 {
		c.MaxSessions = source.MaxSessions
	}
}
