// Package orchestrator turns raw user commands into unified replies. It
// classifies each command against the agent catalog, fans the work out to
// the selected agents through the hub, synthesizes their contributions
// into one answer, and records the exchange in shared memory.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/orchestrate/hub"
	"github.com/tailored-agentic-units/foreman/orchestrate/workflows"
	"github.com/tailored-agentic-units/foreman/planner"
	"github.com/tailored-agentic-units/foreman/session"
)

// Event types emitted while handling commands.
const (
	EventCommand  observability.EventType = "orchestrator.command"
	EventDelegate observability.EventType = "orchestrator.delegate"
	EventReply    observability.EventType = "orchestrator.reply"
	EventFallback observability.EventType = "orchestrator.fallback"
)

const fallbackReply = "I can help with budgets and costs, projects and tasks, " +
	"documents, clients, crew and equipment, permits and compliance, or " +
	"reports across your records. Tell me what you need."

// Command is one user request. An empty SessionID starts a new session.
type Command struct {
	Text      string    `json:"text"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// UnifiedResponse is the synthesized answer to a command. Responses holds
// every agent's individual output, including failures. Partial is set when
// at least one delegated agent failed but others answered.
type UnifiedResponse struct {
	SessionID string            `json:"session_id"`
	Reply     string            `json:"reply"`
	Agents    []string          `json:"agents,omitempty"`
	Responses []*agent.Response `json:"responses,omitempty"`
	Partial   bool              `json:"partial,omitempty"`
	Origin    planner.Origin    `json:"origin,omitempty"`
}

type delegation struct {
	agent string
	sub   *agent.Subrequest
}

// Orchestrator coordinates the planner, the hub, and shared memory.
type Orchestrator struct {
	cfg      *Config
	planner  *planner.Planner
	hub      hub.Hub
	gateway  memory.Gateway
	sessions *session.Registry
	observer observability.Observer
}

// Deps are the collaborators an Orchestrator needs. Gateway and Observer
// may be nil; without a gateway exchanges are not recorded.
type Deps struct {
	Planner  *planner.Planner
	Hub      hub.Hub
	Gateway  memory.Gateway
	Sessions *session.Registry
	Observer observability.Observer
}

// New validates deps and creates an Orchestrator.
func New(cfg *Config, deps Deps) (*Orchestrator, error) {
	if deps.Planner == nil {
		return nil, ErrMissingPlanner
	}
	if deps.Hub == nil {
		return nil, ErrMissingHub
	}
	if deps.Sessions == nil {
		return nil, ErrMissingSessions
	}

	merged := DefaultConfig().Merge(cfg)

	return &Orchestrator{
		cfg:      merged,
		planner:  deps.Planner,
		hub:      deps.Hub,
		gateway:  deps.Gateway,
		sessions: deps.Sessions,
		observer: deps.Observer,
	}, nil
}

// Handle processes one command end to end: classify, delegate, synthesize,
// record. It always returns a usable reply when err is nil, even when the
// command matched no domain or some agents failed.
func (o *Orchestrator) Handle(ctx context.Context, cmd Command) (*UnifiedResponse, error) {
	if cmd.Text == "" {
		return nil, ErrEmptyCommand
	}

	sess := o.sessions.Get(cmd.SessionID)
	history := sess.Messages()

	observability.Emit(ctx, o.observer, EventCommand, observability.LevelInfo, "orchestrator",
		map[string]any{"session": sess.ID(), "history": len(history)})

	classification, err := o.planner.Classify(ctx, cmd.Text, history)
	if err != nil {
		if errors.Is(err, planner.ErrNoIntent) {
			return o.finish(ctx, sess, cmd, &UnifiedResponse{
				SessionID: sess.ID(),
				Reply:     fallbackReply,
			}, EventFallback)
		}
		return nil, fmt.Errorf("classify command: %w", err)
	}

	delegations := make([]delegation, 0, len(classification.Agents))
	for _, name := range classification.Agents {
		delegations = append(delegations, delegation{
			agent: name,
			sub: &agent.Subrequest{
				ID:        uuid.Must(uuid.NewV7()).String(),
				SessionID: sess.ID(),
				Input:     cmd.Text,
				Operation: classification.Operation,
				Params:    classification.Params,
			},
		})
	}

	responses, partial := o.dispatch(ctx, sess.ID(), delegations)

	var parts []planner.Contribution
	for _, response := range responses {
		if response.Status == agent.StatusOK && response.Content != "" {
			parts = append(parts, planner.Contribution{Agent: response.Agent, Content: response.Content})
		}
	}

	reply := ""
	if len(parts) > 0 {
		reply, err = o.planner.Synthesize(ctx, cmd.Text, parts)
		if err != nil {
			return nil, fmt.Errorf("synthesize reply: %w", err)
		}
	} else {
		reply = "The specialist agents could not complete that request. Please try again."
	}

	return o.finish(ctx, sess, cmd, &UnifiedResponse{
		SessionID: sess.ID(),
		Reply:     reply,
		Agents:    classification.Agents,
		Responses: responses,
		Partial:   partial,
		Origin:    classification.Origin,
	}, EventReply)
}

// dispatch fans the delegations out through the hub. All delegations are
// attempted; failures come back as StatusError responses in their original
// positions.
func (o *Orchestrator) dispatch(ctx context.Context, sessionID string, delegations []delegation) ([]*agent.Response, bool) {
	failFast := false
	cfg := o.cfg.Parallel
	cfg.FailFastNil = &failFast

	observability.Emit(ctx, o.observer, EventDelegate, observability.LevelVerbose, "orchestrator",
		map[string]any{"session": sessionID, "agents": len(delegations)})

	result, _ := workflows.ProcessParallel(ctx, cfg, delegations,
		func(ctx context.Context, d delegation) (*agent.Response, error) {
			reply, err := o.hub.Request(ctx, o.cfg.Name, d.agent, sessionID, d.sub)
			if err != nil {
				return nil, err
			}
			response, ok := reply.Data.(*agent.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected reply payload from %s: %T", d.agent, reply.Data)
			}
			return response, nil
		}, nil)

	failed := make(map[int]error, len(result.Errors))
	for _, taskErr := range result.Errors {
		failed[taskErr.Index] = taskErr.Err
	}

	responses := make([]*agent.Response, 0, len(delegations))
	next := 0
	succeeded, failures := 0, 0
	for i, d := range delegations {
		if err, ok := failed[i]; ok {
			responses = append(responses, agent.Failure(d.agent, err))
			failures++
			continue
		}
		if next < len(result.Results) {
			response := result.Results[next]
			next++
			if response.Status == agent.StatusOK {
				succeeded++
			} else {
				failures++
			}
			responses = append(responses, response)
		}
	}

	return responses, succeeded > 0 && failures > 0
}

// finish appends the exchange to the session, records it in shared memory,
// and emits the closing event.
func (o *Orchestrator) finish(ctx context.Context, sess session.Session, cmd Command, response *UnifiedResponse, event observability.EventType) (*UnifiedResponse, error) {
	sess.AddMessage(protocol.NewMessage(protocol.RoleUser, cmd.Text))
	sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, response.Reply))

	o.record(ctx, sess.ID(), cmd, response)

	observability.Emit(ctx, o.observer, event, observability.LevelInfo, "orchestrator",
		map[string]any{
			"session": sess.ID(),
			"agents":  response.Agents,
			"partial": response.Partial,
		})

	return response, nil
}

type turnRecord struct {
	content  string
	metadata map[string]string
}

// record writes the conversation turn to shared memory as an ordered chain:
// the user's command, each agent reply, then the unified answer. Recording
// failures are reported but never fail the command.
func (o *Orchestrator) record(ctx context.Context, sessionID string, cmd Command, response *UnifiedResponse) {
	if o.gateway == nil {
		return
	}

	records := []turnRecord{{
		content:  cmd.Text,
		metadata: map[string]string{"role": "user", "session": sessionID},
	}}
	for _, name := range response.Agents {
		records = append(records, turnRecord{
			content: fmt.Sprintf("Delegated to %s: %s", name, cmd.Text),
			metadata: map[string]string{
				"kind":    "delegation",
				"agent":   name,
				"session": sessionID,
			},
		})
	}
	for _, r := range response.Responses {
		if r.Status != agent.StatusOK || r.Content == "" {
			continue
		}
		records = append(records, turnRecord{
			content: r.Content,
			metadata: map[string]string{
				"role":    "agent",
				"agent":   r.Agent,
				"kind":    "agent_response",
				"session": sessionID,
			},
		})
	}
	records = append(records, turnRecord{
		content:  response.Reply,
		metadata: map[string]string{"role": "assistant", "session": sessionID},
	})

	_, err := workflows.ProcessChain(ctx, o.cfg.Chain, records, 0,
		func(ctx context.Context, r turnRecord, written int) (int, error) {
			if _, err := o.gateway.Write(ctx, memory.CategoryConversations, r.content, r.metadata); err != nil {
				return written, err
			}
			return written + 1, nil
		}, nil)
	if err != nil {
		observability.Emit(ctx, o.observer, EventReply, observability.LevelWarning, "orchestrator",
			map[string]any{"session": sessionID, "record_error": err.Error()})
	}
}
