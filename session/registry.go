package session

import "sync"

// Registry tracks live sessions by id, creating them on first use. When the
// session count reaches MaxSessions, the least recently used session is
// evicted so a long-running process does not accumulate history forever.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.Mutex
	limit    int
	max      int
	tick     uint64
	sessions map[string]*tracked
}

type tracked struct {
	session  Session
	lastUsed uint64
}

// NewRegistry creates a Registry applying the config's history and session
// limits.
func NewRegistry(cfg *Config) *Registry {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}
	return &Registry{
		limit:    merged.HistoryLimit,
		max:      merged.MaxSessions,
		sessions: make(map[string]*tracked),
	}
}

// Get returns the session with the given id, creating it if needed. An empty
// id creates a fresh session with a generated UUIDv7 id.
func (r *Registry) Get(id string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tick++
	if id != "" {
		if t, ok := r.sessions[id]; ok {
			t.lastUsed = r.tick
			return t.session
		}
	}

	var s Session
	if id == "" {
		s = NewMemorySession(r.limit)
	} else {
		s = NewMemorySessionWithID(id, r.limit)
	}
	r.evictLocked()
	r.sessions[s.ID()] = &tracked{session: s, lastUsed: r.tick}
	return s
}

// evictLocked drops the least recently used session when the registry is at
// capacity. Callers must hold r.mu.
func (r *Registry) evictLocked() {
	if r.max <= 0 || len(r.sessions) < r.max {
		return
	}
	var (
		oldestID   string
		oldestUsed uint64
		found      bool
	)
	for id, t := range r.sessions {
		if !found || t.lastUsed < oldestUsed {
			oldestID = id
			oldestUsed = t.lastUsed
			found = true
		}
	}
	delete(r.sessions, oldestID)
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
