package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/foreman/core/protocol"
)

type memorySession struct {
	id       string
	limit    int
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice. The
// session is assigned a unique UUIDv7 identifier. limit caps the retained
// history; zero or negative keeps everything.
func NewMemorySession(limit int) Session {
	return NewMemorySessionWithID(uuid.Must(uuid.NewV7()).String(), limit)
}

// NewMemorySessionWithID creates an in-memory session with a caller-chosen
// identifier, for resuming a session named by the client.
func NewMemorySessionWithID(id string, limit int) Session {
	return &memorySession{id: id, limit: limit}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) AddMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if s.limit > 0 && len(s.messages) > s.limit {
		s.messages = s.messages[len(s.messages)-s.limit:]
	}
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
