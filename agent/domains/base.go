// Package domains implements the specialized construction-management agents:
// financial, project, document, client, resource, compliance, and analytics.
// Each agent owns a registry of named operations over the shared memory
// gateway; input that resolves to no operation falls back to a domain-scoped
// memory search, answered through the model provider when one is configured.
package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/clickup"
	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/ops"
	"github.com/tailored-agentic-units/foreman/planner"
)

// EventExecute is emitted once per agent execution.
const EventExecute observability.EventType = "agent.execute"

// Deps carries the shared dependencies agents are built from. Provider and
// ClickUp may be nil; agents degrade to memory-only behavior.
type Deps struct {
	Gateway  memory.Gateway
	Provider planner.Provider
	ClickUp  *clickup.Client
	Observer observability.Observer
}

// RegisterAll registers every domain agent with the registry.
func RegisterAll(reg *agent.Registry, deps Deps) error {
	ctors := []struct {
		name        string
		description string
		ctor        agent.Constructor
	}{
		{"financial", "Budgets, expenses, invoices, transactions, and financial reports.",
			func() (agent.Agent, error) { return NewFinancial(deps), nil }},
		{"project", "Construction projects, tasks, schedules, and timelines.",
			func() (agent.Agent, error) { return NewProject(deps), nil }},
		{"document", "Plans, permits, contracts: storage and retrieval.",
			func() (agent.Agent, error) { return NewDocument(deps), nil }},
		{"client", "Client contacts, preferences, and interaction history.",
			func() (agent.Agent, error) { return NewClient(deps), nil }},
		{"resource", "Materials, equipment, and labor availability.",
			func() (agent.Agent, error) { return NewResource(deps), nil }},
		{"compliance", "Permits, building codes, regulations, and inspections.",
			func() (agent.Agent, error) { return NewCompliance(deps), nil }},
		{"analytics", "Cross-domain reports, trends, and summaries.",
			func() (agent.Agent, error) { return NewAnalytics(deps), nil }},
	}
	for _, c := range ctors {
		if err := reg.Register(c.name, c.description, c.ctor); err != nil {
			return err
		}
	}
	return nil
}

// baseAgent implements the shared execution flow: operation dispatch with a
// memory-search fallback.
type baseAgent struct {
	name        string
	description string
	category    memory.Category
	deps        Deps
	registry    *ops.Registry
}

func newBase(name, description string, category memory.Category, deps Deps) *baseAgent {
	return &baseAgent{
		name:        name,
		description: description,
		category:    category,
		deps:        deps,
		registry:    ops.NewRegistry(),
	}
}

func (a *baseAgent) Name() string         { return a.name }
func (a *baseAgent) Description() string  { return a.description }
func (a *baseAgent) Operations() []ops.Spec { return a.registry.List() }

// Execute dispatches to the named operation when one is resolved, otherwise
// answers from domain memory.
func (a *baseAgent) Execute(ctx context.Context, req *agent.Subrequest) (*agent.Response, error) {
	observability.Emit(ctx, a.deps.Observer, EventExecute, observability.LevelVerbose, a.name,
		map[string]any{"request": req.ID, "operation": req.Operation})

	if req.Operation != "" {
		if _, ok := a.registry.Get(req.Operation); ok {
			args, err := json.Marshal(req.Params)
			if err != nil {
				return nil, fmt.Errorf("encode operation params: %w", err)
			}
			result, err := a.registry.Execute(ctx, req.Operation, args)
			if err != nil {
				return nil, err
			}
			return &agent.Response{
				Agent:      a.name,
				Content:    result.Content,
				Data:       result.Data,
				Status:     agent.StatusOK,
				Confidence: 1,
			}, nil
		}
	}
	return a.answer(ctx, req)
}

// answer is the fallback path: search the agent's category, then either ask
// the model with that context or report the findings directly.
func (a *baseAgent) answer(ctx context.Context, req *agent.Subrequest) (*agent.Response, error) {
	records, err := a.deps.Gateway.SimilaritySearch(ctx, req.Input, 5, memory.Filter{
		Categories: []memory.Category{a.category},
	})
	if err != nil {
		return nil, err
	}

	if a.deps.Provider == nil {
		if len(records) == 0 {
			return &agent.Response{
				Agent:      a.name,
				Content:    fmt.Sprintf("No %s records match that request.", a.category),
				Status:     agent.StatusOK,
				Confidence: 0.3,
			}, nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d relevant %s records:\n", len(records), a.category)
		for _, r := range records {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
		return &agent.Response{
			Agent:      a.name,
			Content:    strings.TrimRight(b.String(), "\n"),
			Status:     agent.StatusOK,
			Confidence: 0.5,
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s specialist for a construction management company. %s\n", a.name, a.description)
	if len(records) > 0 {
		b.WriteString("Relevant records from company memory:\n")
		for _, r := range records {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
	} else {
		b.WriteString("No relevant records were found in company memory; say so if the question needs them.\n")
	}
	b.WriteString("Answer the user's request concisely.")

	reply, err := a.deps.Provider.Chat(ctx, []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, b.String()),
		protocol.NewMessage(protocol.RoleUser, req.Input),
	})
	if err != nil {
		return nil, fmt.Errorf("%s agent model call: %w", a.name, err)
	}
	return &agent.Response{
		Agent:      a.name,
		Content:    reply,
		Status:     agent.StatusOK,
		Confidence: 0.8,
	}, nil
}

// Argument helpers shared by the operation handlers.

func stringArg(args json.RawMessage, key string) string {
	var m map[string]any
	if err := json.Unmarshal(args, &m); err != nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatArg(args json.RawMessage, key string) (float64, bool) {
	var m map[string]any
	if err := json.Unmarshal(args, &m); err != nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimLeft(v, "$"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func intArg(args json.RawMessage, key string) (int, bool) {
	f, ok := floatArg(args, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
