package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/foreman/embedding"
	"github.com/tailored-agentic-units/foreman/observability"
)

// Event types emitted by the gateway.
const (
	EventWrite  observability.EventType = "memory.write"
	EventQuery  observability.EventType = "memory.query"
	EventSearch observability.EventType = "memory.search"
	EventDelete observability.EventType = "memory.delete"
)

// Gateway is the single access point for shared memory. All agents and the
// orchestrator read and write through it; none touch the stores directly.
type Gateway interface {
	// Write stores content under a category and returns the stored record.
	Write(ctx context.Context, category Category, content string, metadata map[string]string) (Record, error)

	// Query returns records in a category, newest first.
	Query(ctx context.Context, category Category, filter Filter) ([]Record, error)

	// SimilaritySearch returns up to k records most relevant to the query
	// text across all categories, best first.
	SimilaritySearch(ctx context.Context, query string, k int, filter Filter) ([]Record, error)

	// Get returns the record with the given ID.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record with the given ID from both stores.
	Delete(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}

type gateway struct {
	facts    *FactStore
	vectors  *VectorStore
	observer observability.Observer

	// writeMu serializes mutations so the two stores never diverge under
	// concurrent writers.
	writeMu sync.Mutex
	closed  bool
}

// Open builds a Gateway from the config, creating both store files as
// needed. observer may be nil.
func Open(cfg *Config, observer observability.Observer) (Gateway, error) {
	cfg = DefaultConfig().Merge(cfg)
	if cfg.FactPath == cfg.VectorPath {
		return nil, fmt.Errorf("fact and vector stores must use distinct paths: %s", cfg.FactPath)
	}

	engine, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("configure embedding engine: %w", err)
	}

	facts, err := NewFactStore(cfg.FactPath)
	if err != nil {
		return nil, err
	}
	vectors, err := NewVectorStore(cfg.VectorPath, engine)
	if err != nil {
		facts.Close()
		return nil, err
	}
	return &gateway{facts: facts, vectors: vectors, observer: observer}, nil
}

func (g *gateway) Write(ctx context.Context, category Category, content string, metadata map[string]string) (Record, error) {
	if !category.Valid() {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if content == "" {
		return Record{}, ErrEmptyContent
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.closed {
		return Record{}, ErrClosed
	}

	r := Record{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Category:  category,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := g.facts.Insert(ctx, r); err != nil {
		return Record{}, err
	}
	if err := g.vectors.Insert(ctx, r); err != nil {
		// Roll back the fact row so the stores stay consistent.
		if derr := g.facts.Delete(ctx, r.ID); derr != nil {
			observability.Emit(ctx, g.observer, EventWrite, observability.LevelError, "memory",
				map[string]any{"id": r.ID, "error": derr.Error()})
		}
		return Record{}, err
	}

	observability.Emit(ctx, g.observer, EventWrite, observability.LevelVerbose, "memory",
		map[string]any{"id": r.ID, "category": string(category)})
	return r, nil
}

func (g *gateway) Query(ctx context.Context, category Category, filter Filter) ([]Record, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	records, err := g.facts.QueryCategory(ctx, category, filter)
	if err != nil {
		return nil, err
	}
	observability.Emit(ctx, g.observer, EventQuery, observability.LevelVerbose, "memory",
		map[string]any{"category": string(category), "results": len(records)})
	return records, nil
}

func (g *gateway) SimilaritySearch(ctx context.Context, query string, k int, filter Filter) ([]Record, error) {
	records, err := g.vectors.Search(ctx, query, k, filter)
	if err != nil {
		return nil, err
	}
	observability.Emit(ctx, g.observer, EventSearch, observability.LevelVerbose, "memory",
		map[string]any{"k": k, "results": len(records)})
	return records, nil
}

func (g *gateway) Get(ctx context.Context, id string) (Record, error) {
	return g.facts.Get(ctx, id)
}

func (g *gateway) Delete(ctx context.Context, id string) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.closed {
		return ErrClosed
	}
	if err := g.facts.Delete(ctx, id); err != nil {
		return err
	}
	if err := g.vectors.Delete(ctx, id); err != nil {
		return err
	}
	observability.Emit(ctx, g.observer, EventDelete, observability.LevelVerbose, "memory",
		map[string]any{"id": id})
	return nil
}

func (g *gateway) Close() error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	ferr := g.facts.Close()
	verr := g.vectors.Close()
	if ferr != nil {
		return ferr
	}
	return verr
}
