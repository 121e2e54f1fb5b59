// Package ops provides the operation registry each agent uses to expose its
// domain operations. Registries are per-agent instances so two agents can
// define operations with the same name without collision.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Spec describes a registered operation for routing and prompt assembly.
// Parameters documents the expected argument fields as a JSON Schema
// fragment.
type Spec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Handler is the function signature for operation implementations.
// Handlers receive the request context and JSON-encoded arguments.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the operation output returned to the orchestrator.
type Result struct {
	// Content is the human-readable outcome.
	Content string

	// Data carries structured output for synthesis, when the operation
	// produces any.
	Data map[string]any
}

type entry struct {
	spec    Spec
	handler Handler
}

// Registry maps operation names to handlers for one agent.
// Thread-safe for concurrent registration and execution.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry returns an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a new operation.
// Returns ErrAlreadyExists if an operation with the same name is registered.
func (r *Registry) Register(spec Spec, handler Handler) error {
	if spec.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, spec.Name)
	}

	r.entries[spec.Name] = entry{spec: spec, handler: handler}
	return nil
}

// MustRegister registers an operation and panics on error. Intended for
// agent constructors where a duplicate name is a programming mistake.
func (r *Registry) MustRegister(spec Spec, handler Handler) {
	if err := r.Register(spec, handler); err != nil {
		panic(err)
	}
}

// Get retrieves a handler by operation name.
// Returns the handler and true if found, nil and false otherwise.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns the specs of all registered operations, sorted by name.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.entries))
	for _, e := range r.entries {
		specs = append(specs, e.spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Execute dispatches an operation call to the registered handler by name.
// Returns ErrNotFound if the operation is not registered.
// Handler errors are wrapped with the operation name for context.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("operation %s failed: %w", name, err)
	}

	return result, nil
}
