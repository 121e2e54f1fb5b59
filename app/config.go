package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailored-agentic-units/foreman/memory"
	orchconfig "github.com/tailored-agentic-units/foreman/orchestrate/config"
	"github.com/tailored-agentic-units/foreman/orchestrator"
	"github.com/tailored-agentic-units/foreman/planner"
	"github.com/tailored-agentic-units/foreman/server"
	"github.com/tailored-agentic-units/foreman/session"
)

// ClickUpConfig configures the optional task-management integration.
// The API key comes from the environment, never from config files.
type ClickUpConfig struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	APIKey      string `json:"-"`
}

func (c *ClickUpConfig) Merge(other *ClickUpConfig) {
	if other.WorkspaceID != "" {
		c.WorkspaceID = other.WorkspaceID
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
}

// Enabled reports whether the integration has usable credentials.
func (c *ClickUpConfig) Enabled() bool {
	return c.APIKey != "" && c.WorkspaceID != ""
}

// Config holds initialization parameters for every subsystem. Each section
// delegates to that subsystem's own config type.
type Config struct {
	Name         string               `json:"name,omitempty"`
	Observer     string               `json:"observer,omitempty"`
	Memory       *memory.Config       `json:"memory,omitempty"`
	Planner      planner.Config       `json:"planner"`
	Session      session.Config       `json:"session"`
	Hub          orchconfig.HubConfig `json:"hub"`
	Orchestrator *orchestrator.Config `json:"orchestrator,omitempty"`
	Server       *server.Config       `json:"server,omitempty"`
	ClickUp      ClickUpConfig        `json:"clickup"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() *Config {
	return &Config{
		Name:         "foreman",
		Observer:     "slog",
		Memory:       memory.DefaultConfig(),
		Planner:      planner.DefaultConfig(),
		Session:      session.DefaultConfig(),
		Hub:          orchconfig.DefaultHubConfig(),
		Orchestrator: orchestrator.DefaultConfig(),
		Server:       server.DefaultConfig(),
	}
}

// Merge applies non-zero values from other into a copy of c, delegating to
// each subsystem's Merge method.
func (c *Config) Merge(other *Config) *Config {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.Name != "" {
		merged.Name = other.Name
	}
	if other.Observer != "" {
		merged.Observer = other.Observer
	}
	if other.Memory != nil {
		merged.Memory = merged.Memory.Merge(other.Memory)
	}
	merged.Planner.Merge(&other.Planner)
	merged.Session.Merge(&other.Session)
	merged.Hub.Merge(&other.Hub)
	if other.Orchestrator != nil {
		merged.Orchestrator = merged.Orchestrator.Merge(other.Orchestrator)
	}
	if other.Server != nil {
		merged.Server = merged.Server.Merge(other.Server)
	}
	merged.ClickUp.Merge(&other.ClickUp)
	return &merged
}

// LoadConfig reads a JSON config file and merges it over the defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return DefaultConfig().Merge(&loaded), nil
}

// ApplyEnv overlays secrets and deployment paths from the environment:
//
//	OPENAI_API_KEY / GEMINI_API_KEY  model provider credentials
//	CLICKUP_API_KEY                  task integration credential
//	CLICKUP_WORKSPACE_ID             task integration workspace
//	FOREMAN_DB_PATH                  directory for the sqlite stores
func (c *Config) ApplyEnv() {
	switch c.Planner.Provider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.Planner.APIKey = key
		}
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.Planner.APIKey = key
		}
	}

	if key := os.Getenv("CLICKUP_API_KEY"); key != "" {
		c.ClickUp.APIKey = key
	}
	if ws := os.Getenv("CLICKUP_WORKSPACE_ID"); ws != "" {
		c.ClickUp.WorkspaceID = ws
	}

	if dir := os.Getenv("FOREMAN_DB_PATH"); dir != "" {
		if c.Memory == nil {
			c.Memory = memory.DefaultConfig()
		}
		c.Memory.FactPath = filepath.Join(dir, "facts.db")
		c.Memory.VectorPath = filepath.Join(dir, "vectors.db")
	}
}
