package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds an agent on demand. Dependencies are captured in the
// closure at registration time.
type Constructor func() (Agent, error)

// Info describes a registered agent without instantiating it.
type Info struct {
	Name        string
	Description string
}

// Registry manages named agent constructors with lazy instantiation.
// Constructors are stored at registration time; agents are created on first
// Get call. Thread-safe for concurrent access.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	descriptions map[string]string
	agents       map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		descriptions: make(map[string]string),
		agents:       make(map[string]Agent),
	}
}

// Register adds a named agent constructor to the registry.
// The agent is not instantiated until Get is called.
func (r *Registry) Register(name, description string, ctor Constructor) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("%w: %s", ErrAgentExists, name)
	}

	r.constructors[name] = ctor
	r.descriptions[name] = description
	return nil
}

// Get retrieves a named agent, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, exists := r.agents[name]; exists {
		return a, nil
	}

	ctor, registered := r.constructors[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	a, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", name, err)
	}

	r.agents[name] = a
	return a, nil
}

// List returns information about all registered agents, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.constructors))
	for name := range r.constructors {
		infos = append(infos, Info{Name: name, Description: r.descriptions[name]})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos
}

// Replace updates the constructor for an existing named agent.
// Any cached agent instance is invalidated; the next Get re-instantiates.
func (r *Registry) Replace(name, description string, ctor Constructor) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	r.constructors[name] = ctor
	r.descriptions[name] = description
	delete(r.agents, name)
	return nil
}

// Unregister removes a named agent from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	delete(r.constructors, name)
	delete(r.descriptions, name)
	delete(r.agents, name)
	return nil
}
