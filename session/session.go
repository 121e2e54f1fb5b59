// Package session manages per-conversation message history. The orchestrator
// feeds session history into classification and synthesis so follow-up
// questions keep their context.
package session

import (
	"github.com/tailored-agentic-units/foreman/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Clear resets the conversation history.
	Clear()
}
