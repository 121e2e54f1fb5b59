package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/orchestrate/config"
	"github.com/tailored-agentic-units/foreman/orchestrate/messaging"
)

type registration struct {
	Agent    agent.Agent
	Handler  MessageHandler
	Channel  *MessageChannel[*messaging.Message]
	LastSeen time.Time
}

// Hub routes messages between the orchestrator and registered agents.
// The topology is a tree: the orchestrator addresses agents by name and
// agents answer back through the requester's response channel. Agents
// never message each other directly.
type Hub interface {
	RegisterAgent(ag agent.Agent, handler MessageHandler) error
	UnregisterAgent(name string) error

	Send(ctx context.Context, from, to string, data any) error
	Request(ctx context.Context, from, to, sessionID string, data any) (*messaging.Message, error)

	Metrics() MetricsSnapshot
	Shutdown(timeout time.Duration) error
}

type hub struct {
	name string

	agents      map[string]*registration
	agentsMutex sync.RWMutex

	responseChannels map[string]chan *messaging.Message
	responsesMutex   sync.RWMutex

	channelBufferSize int
	defaultTimeout    time.Duration

	logger  *slog.Logger
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a hub and starts its delivery loop. The loop stops when
// ctx is cancelled or Shutdown is called.
func New(ctx context.Context, hubConfig config.HubConfig) Hub {
	hubCtx, cancel := context.WithCancel(ctx)

	h := &hub{
		name:              hubConfig.Name,
		agents:            make(map[string]*registration),
		responseChannels:  make(map[string]chan *messaging.Message),
		channelBufferSize: hubConfig.ChannelBufferSize,
		defaultTimeout:    hubConfig.DefaultTimeout,
		logger:            hubConfig.Logger,
		metrics:           NewMetrics(),
		ctx:               hubCtx,
		cancel:            cancel,
		done:              make(chan struct{}),
	}

	go h.messageLoop()

	return h
}

func (h *hub) RegisterAgent(ag agent.Agent, handler MessageHandler) error {
	name := ag.Name()
	h.agentsMutex.Lock()
	defer h.agentsMutex.Unlock()

	if _, exists := h.agents[name]; exists {
		return fmt.Errorf("agent already registered: %s", name)
	}

	channel := NewMessageChannel[*messaging.Message](h.ctx, h.channelBufferSize)

	h.agents[name] = &registration{
		Agent:    ag,
		Handler:  handler,
		Channel:  channel,
		LastSeen: time.Now(),
	}
	h.metrics.RecordLocalAgent(1)

	h.logger.DebugContext(
		h.ctx,
		"agent registered",
		slog.String("hub_name", h.name),
		slog.String("agent", name),
	)

	return nil
}

func (h *hub) UnregisterAgent(name string) error {
	h.agentsMutex.Lock()
	reg, exists := h.agents[name]
	if exists {
		delete(h.agents, name)
		reg.Channel.Close()
	}
	h.agentsMutex.Unlock()

	if !exists {
		return fmt.Errorf("agent not found: %s", name)
	}

	h.metrics.RecordLocalAgent(-1)
	h.logger.DebugContext(
		h.ctx,
		"agent unregistered",
		slog.String("hub_name", h.name),
		slog.String("agent", name),
	)

	return nil
}

func (h *hub) Send(ctx context.Context, from, to string, data any) error {
	h.agentsMutex.RLock()
	reg, exists := h.agents[to]
	h.agentsMutex.RUnlock()

	if !exists {
		return fmt.Errorf("destination agent not found: %s", to)
	}

	message := messaging.NewNotification(from, to, data).Build()
	if err := reg.Channel.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to deliver message: %w", err)
	}

	h.updateLastSeen(from)
	h.metrics.RecordMessageSent(1)

	return nil
}

// Request delivers data to the named agent and blocks until its handler
// answers, ctx ends, or the hub's default timeout elapses. The session id
// travels with the message so agents can attribute writes to the
// conversation that produced them.
func (h *hub) Request(ctx context.Context, from, to, sessionID string, data any) (*messaging.Message, error) {
	h.agentsMutex.RLock()
	reg, exists := h.agents[to]
	h.agentsMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("destination agent not found: %s", to)
	}

	message := messaging.NewRequest(from, to, data).Session(sessionID).Build()
	responseChannel := make(chan *messaging.Message, 1)

	h.responsesMutex.Lock()
	h.responseChannels[message.ID] = responseChannel
	h.responsesMutex.Unlock()

	// The channel is deliberately left open: the delivery loop may still
	// hold a reference and try a send after a timeout here. Dropping the
	// map entry is enough to let it be collected.
	defer func() {
		h.responsesMutex.Lock()
		delete(h.responseChannels, message.ID)
		h.responsesMutex.Unlock()
	}()

	if err := reg.Channel.Send(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	h.updateLastSeen(from)
	h.metrics.RecordMessageSent(1)

	timeout := h.defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	select {
	case response := <-responseChannel:
		return response, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
	case <-time.After(timeout):
		return nil, fmt.Errorf("request timed out after %v", timeout)
	}
}

func (h *hub) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

func (h *hub) Shutdown(timeout time.Duration) error {
	h.logger.DebugContext(
		h.ctx,
		"shutting down hub",
		slog.String("hub_name", h.name),
	)
	h.cancel()

	select {
	case <-h.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("hub shutdown timeout after %v", timeout)
	}
}

func (h *hub) messageLoop() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			return
		default:
			h.processAgentMessages()
		}
	}
}

func (h *hub) processAgentMessages() {
	h.agentsMutex.RLock()
	if len(h.agents) == 0 {
		h.agentsMutex.RUnlock()
		return
	}

	registrations := make([]*registration, 0, len(h.agents))
	for _, reg := range h.agents {
		registrations = append(registrations, reg)
	}
	h.agentsMutex.RUnlock()

	for _, reg := range registrations {
		select {
		case <-h.ctx.Done():
			return
		default:
			if message, ok := reg.Channel.TryReceive(); ok && message != nil {
				go h.handleMessage(reg, message)
			}
		}
	}
}

func (h *hub) handleMessage(reg *registration, message *messaging.Message) {
	if reg.Handler == nil {
		return
	}

	h.metrics.RecordMessageRecv(1)

	messageContext := &MessageContext{
		HubName: h.name,
		Agent:   reg.Agent,
	}

	response, err := reg.Handler(h.ctx, message, messageContext)
	if err != nil {
		h.logger.ErrorContext(
			h.ctx,
			"message handler failed",
			slog.String("hub_name", h.name),
			slog.String("agent", reg.Agent.Name()),
			slog.String("from", message.From),
			slog.String("error", err.Error()),
		)
		return
	}

	if response == nil {
		return
	}

	if response.Type == messaging.MessageTypeResponse && response.ReplyTo != "" {
		h.responsesMutex.RLock()
		respChan, exists := h.responseChannels[response.ReplyTo]
		h.responsesMutex.RUnlock()

		if exists {
			select {
			case respChan <- response:
			default:
			}
			return
		}
	}

	h.agentsMutex.RLock()
	targetReg, exists := h.agents[response.To]
	h.agentsMutex.RUnlock()

	if exists {
		if err := targetReg.Channel.Send(h.ctx, response); err != nil {
			h.logger.ErrorContext(
				h.ctx,
				"failed to send response",
				slog.String("hub_name", h.name),
				slog.String("from", response.From),
				slog.String("to", response.To),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (h *hub) updateLastSeen(name string) {
	h.agentsMutex.Lock()
	if reg, exists := h.agents[name]; exists {
		reg.LastSeen = time.Now()
	}
	h.agentsMutex.Unlock()
}
