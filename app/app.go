// Package app assembles the full assistant: shared memory, planner, domain
// agents, dispatch hub, orchestrator, and REST server. It initializes from
// configuration via New; functional options allow overriding any subsystem,
// mainly for tests.
//
//	cfg := app.DefaultConfig()
//	cfg.ApplyEnv()
//	a, err := app.New(cfg)
//	err = a.Run(ctx)
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/agent/domains"
	"github.com/tailored-agentic-units/foreman/clickup"
	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/orchestrate/hub"
	"github.com/tailored-agentic-units/foreman/orchestrator"
	"github.com/tailored-agentic-units/foreman/planner"
	"github.com/tailored-agentic-units/foreman/server"
	"github.com/tailored-agentic-units/foreman/session"
)

// Version is the service version reported on GET /.
const Version = "0.1.0"

// Option overrides a config-created subsystem. Applied by New after
// config-driven initialization.
type Option func(*App)

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(a *App) { a.observer = o }
}

// WithGateway overrides the config-created memory gateway.
func WithGateway(g memory.Gateway) Option {
	return func(a *App) { a.gateway = g }
}

// WithProvider overrides the config-created model provider.
func WithProvider(p planner.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithClickUp overrides the config-created ClickUp client.
func WithClickUp(c *clickup.Client) Option {
	return func(a *App) { a.clickup = c }
}

// App is the assembled assistant runtime.
type App struct {
	cfg      *Config
	observer observability.Observer
	gateway  memory.Gateway
	provider planner.Provider
	clickup  *clickup.Client
	registry *agent.Registry
	hub      hub.Hub
	orch     *orchestrator.Orchestrator
	server   *server.Server
	sessions *session.Registry
}

// New builds the full runtime from configuration. Options are applied in
// two phases: overrides that replace config-created dependencies run before
// wiring, so the agents and orchestrator see the overridden values.
func New(cfg *Config, opts ...Option) (*App, error) {
	merged := DefaultConfig().Merge(cfg)
	a := &App{cfg: merged}

	for _, opt := range opts {
		opt(a)
	}

	if a.observer == nil {
		observer, err := observability.GetObserver(merged.Observer)
		if err != nil {
			return nil, fmt.Errorf("resolve observer: %w", err)
		}
		a.observer = observer
	}

	if a.gateway == nil {
		gateway, err := memory.Open(merged.Memory, a.observer)
		if err != nil {
			return nil, fmt.Errorf("open memory gateway: %w", err)
		}
		a.gateway = gateway
	}

	if a.provider == nil {
		provider, err := planner.NewProvider(&merged.Planner)
		if err != nil {
			return nil, fmt.Errorf("create model provider: %w", err)
		}
		a.provider = provider
	}

	if a.clickup == nil && merged.ClickUp.Enabled() {
		var copts []clickup.Option
		if merged.ClickUp.BaseURL != "" {
			copts = append(copts, clickup.WithBaseURL(merged.ClickUp.BaseURL))
		}
		client, err := clickup.New(merged.ClickUp.APIKey, merged.ClickUp.WorkspaceID, copts...)
		if err != nil {
			return nil, fmt.Errorf("create clickup client: %w", err)
		}
		a.clickup = client
	}

	a.registry = agent.NewRegistry()
	if err := domains.RegisterAll(a.registry, domains.Deps{
		Gateway:  a.gateway,
		Provider: a.provider,
		ClickUp:  a.clickup,
		Observer: a.observer,
	}); err != nil {
		return nil, fmt.Errorf("register agents: %w", err)
	}

	a.hub = hub.New(context.Background(), merged.Hub)

	catalog := make([]planner.AgentInfo, 0)
	agentNames := make([]string, 0)
	for _, info := range a.registry.List() {
		ag, err := a.registry.Get(info.Name)
		if err != nil {
			return nil, fmt.Errorf("construct agent %s: %w", info.Name, err)
		}
		if err := a.hub.RegisterAgent(ag, hub.AgentHandler(ag)); err != nil {
			return nil, fmt.Errorf("register agent %s on hub: %w", info.Name, err)
		}

		operations := make([]string, 0, len(ag.Operations()))
		for _, spec := range ag.Operations() {
			operations = append(operations, spec.Name)
		}
		catalog = append(catalog, planner.AgentInfo{
			Name:        info.Name,
			Description: info.Description,
			Operations:  operations,
		})
		agentNames = append(agentNames, info.Name)
	}

	a.sessions = session.NewRegistry(&merged.Session)

	orch, err := orchestrator.New(merged.Orchestrator, orchestrator.Deps{
		Planner:  planner.New(a.provider, catalog, a.observer),
		Hub:      a.hub,
		Gateway:  a.gateway,
		Sessions: a.sessions,
		Observer: a.observer,
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	a.orch = orch

	srv, err := server.New(merged.Server, orch, server.Info{
		Name:    merged.Name,
		Version: Version,
		Agents:  agentNames,
	}, a.observer)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	a.server = srv

	return a, nil
}

// Run serves the REST API until ctx is cancelled, then shuts everything
// down.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	return a.server.Run(ctx)
}

// Query handles a single command without the HTTP layer, for one-shot CLI
// use.
func (a *App) Query(ctx context.Context, text, sessionID string) (*orchestrator.UnifiedResponse, error) {
	return a.orch.Handle(ctx, orchestrator.Command{Text: text, SessionID: sessionID})
}

// Orchestrator exposes the assembled orchestrator.
func (a *App) Orchestrator() *orchestrator.Orchestrator {
	return a.orch
}

// Close releases the hub and the memory gateway.
func (a *App) Close() error {
	var firstErr error
	if a.hub != nil {
		if err := a.hub.Shutdown(5 * time.Second); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.gateway != nil {
		if err := a.gateway.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
