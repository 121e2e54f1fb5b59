// Package agent defines the uniform contract for specialized agents and the
// registry the orchestrator resolves them from. Concrete agents live in
// agent/domains.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/foreman/ops"
)

// Status reports the outcome of one agent execution.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Subrequest is the orchestrator's delegation to a single agent. Params
// carries parameters extracted during classification; Operation names a
// specific registered operation when classification resolved one, otherwise
// the agent routes the raw input itself.
type Subrequest struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Input     string         `json:"input"`
	Operation string         `json:"operation,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
}

// Response is a single agent's answer to a subrequest. A failed execution
// still produces a Response with StatusError so the orchestrator can return
// partial results.
type Response struct {
	Agent      string         `json:"agent"`
	Content    string         `json:"content"`
	Data       map[string]any `json:"data,omitempty"`
	Status     Status         `json:"status"`
	Err        string         `json:"error,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
}

// Failure builds an error Response for the named agent.
func Failure(name string, err error) *Response {
	return &Response{Agent: name, Status: StatusError, Err: err.Error()}
}

// Agent is the contract every specialized agent satisfies. Agents are
// stateless beyond per-call reads and writes through the memory gateway.
type Agent interface {
	// Name returns the agent's unique id within the registry.
	Name() string

	// Description summarizes the agent's responsibilities for
	// classification prompts.
	Description() string

	// Operations lists the agent's registered operations.
	Operations() []ops.Spec

	// Execute handles one delegated subrequest.
	Execute(ctx context.Context, req *Subrequest) (*Response, error)
}
