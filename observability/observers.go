package observability

import (
	"context"
	"fmt"
	"sync"
)

// NoOpObserver discards every event. Tests and one-shot CLI queries use it
// to keep output quiet.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// MultiObserver fans events out to several targets, for example a slog
// observer plus a metrics sink. Nil targets are dropped at construction so
// optional sinks can be passed unconditionally.
type MultiObserver struct {
	targets []Observer
}

// NewMultiObserver builds a MultiObserver over the non-nil targets.
func NewMultiObserver(targets ...Observer) *MultiObserver {
	m := &MultiObserver{targets: make([]Observer, 0, len(targets))}
	for _, target := range targets {
		if target != nil {
			m.targets = append(m.targets, target)
		}
	}
	return m
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, target := range m.targets {
		target.OnEvent(ctx, event)
	}
}

// The named registry lets configuration files select an observer by string.
// "noop" and "slog" ship built in; an embedding program can register its own
// sink before loading configuration.
var (
	registryMu sync.RWMutex
	registry   = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(nil),
	}
)

// GetObserver looks up a registered observer by name.
func GetObserver(name string) (Observer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	obs, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, obs Observer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = obs
}
