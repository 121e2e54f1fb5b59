package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/ops"
	"github.com/tailored-agentic-units/foreman/orchestrate/config"
	"github.com/tailored-agentic-units/foreman/orchestrate/hub"
	"github.com/tailored-agentic-units/foreman/orchestrate/messaging"
)

type stubAgent struct {
	name    string
	reply   string
	execErr error
}

func (a *stubAgent) Name() string           { return a.name }
func (a *stubAgent) Description() string    { return "stub agent" }
func (a *stubAgent) Operations() []ops.Spec { return nil }

func (a *stubAgent) Execute(ctx context.Context, sub *agent.Subrequest) (*agent.Response, error) {
	if a.execErr != nil {
		return nil, a.execErr
	}
	return &agent.Response{
		Agent:   a.name,
		Content: a.reply + ": " + sub.Input,
		Status:  agent.StatusOK,
	}, nil
}

func createTestHub(t *testing.T) hub.Hub {
	t.Helper()
	cfg := config.DefaultHubConfig()
	cfg.Name = "test-hub"
	h := hub.New(context.Background(), cfg)
	t.Cleanup(func() { h.Shutdown(5 * time.Second) })
	return h
}

func nopHandler(ctx context.Context, msg *messaging.Message, msgCtx *hub.MessageContext) (*messaging.Message, error) {
	return nil, nil
}

func TestHub_RegisterAgent(t *testing.T) {
	h := createTestHub(t)

	err := h.RegisterAgent(&stubAgent{name: "financial"}, nopHandler)
	if err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	metrics := h.Metrics()
	if metrics.LocalAgents != 1 {
		t.Errorf("LocalAgents = %d, want 1", metrics.LocalAgents)
	}
}

func TestHub_RegisterAgent_Duplicate(t *testing.T) {
	h := createTestHub(t)

	if err := h.RegisterAgent(&stubAgent{name: "financial"}, nopHandler); err != nil {
		t.Fatalf("First RegisterAgent() error = %v", err)
	}

	if err := h.RegisterAgent(&stubAgent{name: "financial"}, nopHandler); err == nil {
		t.Error("RegisterAgent() should fail for duplicate registration")
	}
}

func TestHub_UnregisterAgent(t *testing.T) {
	h := createTestHub(t)

	if err := h.RegisterAgent(&stubAgent{name: "financial"}, nopHandler); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	if err := h.UnregisterAgent("financial"); err != nil {
		t.Fatalf("UnregisterAgent() error = %v", err)
	}

	metrics := h.Metrics()
	if metrics.LocalAgents != 0 {
		t.Errorf("LocalAgents = %d, want 0", metrics.LocalAgents)
	}
}

func TestHub_UnregisterAgent_NotFound(t *testing.T) {
	h := createTestHub(t)

	if err := h.UnregisterAgent("nonexistent"); err == nil {
		t.Error("UnregisterAgent() should fail for nonexistent agent")
	}
}

func TestHub_Send(t *testing.T) {
	h := createTestHub(t)

	received := make(chan string, 1)
	handler := func(ctx context.Context, msg *messaging.Message, msgCtx *hub.MessageContext) (*messaging.Message, error) {
		if data, ok := msg.Data.(string); ok {
			received <- data
		}
		return nil, nil
	}

	if err := h.RegisterAgent(&stubAgent{name: "project"}, handler); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	if err := h.Send(context.Background(), "orchestrator", "project", "reindex"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case data := <-received:
		if data != "reindex" {
			t.Errorf("received %q, want %q", data, "reindex")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

func TestHub_Send_UnknownAgent(t *testing.T) {
	h := createTestHub(t)

	if err := h.Send(context.Background(), "orchestrator", "ghost", "data"); err == nil {
		t.Error("Send() should fail for unknown destination")
	}
}

func TestHub_Request(t *testing.T) {
	h := createTestHub(t)

	ag := &stubAgent{name: "financial", reply: "budget"}
	if err := h.RegisterAgent(ag, hub.AgentHandler(ag)); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := h.Request(ctx, "orchestrator", "financial", "session-1", &agent.Subrequest{
		Input: "what did we spend",
	})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if reply.Type != messaging.MessageTypeResponse {
		t.Errorf("reply type = %v, want %v", reply.Type, messaging.MessageTypeResponse)
	}
	if reply.SessionID != "session-1" {
		t.Errorf("reply session = %q, want %q", reply.SessionID, "session-1")
	}

	response, ok := reply.Data.(*agent.Response)
	if !ok {
		t.Fatalf("reply data type = %T, want *agent.Response", reply.Data)
	}
	if response.Content != "budget: what did we spend" {
		t.Errorf("response content = %q", response.Content)
	}
	if response.Status != agent.StatusOK {
		t.Errorf("response status = %v, want %v", response.Status, agent.StatusOK)
	}
}

func TestHub_Request_SessionThreaded(t *testing.T) {
	h := createTestHub(t)

	sessions := make(chan string, 1)
	handler := func(ctx context.Context, msg *messaging.Message, msgCtx *hub.MessageContext) (*messaging.Message, error) {
		sessions <- msg.SessionID
		return messaging.NewResponse(msgCtx.Agent.Name(), msg.From, msg.ID, "done").
			Session(msg.SessionID).
			Build(), nil
	}

	if err := h.RegisterAgent(&stubAgent{name: "client"}, handler); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.Request(ctx, "orchestrator", "client", "session-42", "who called"); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	select {
	case got := <-sessions:
		if got != "session-42" {
			t.Errorf("handler saw session %q, want %q", got, "session-42")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the request")
	}
}

func TestHub_Request_ExecutionFailure(t *testing.T) {
	h := createTestHub(t)

	ag := &stubAgent{name: "compliance", execErr: context.DeadlineExceeded}
	if err := h.RegisterAgent(ag, hub.AgentHandler(ag)); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := h.Request(ctx, "orchestrator", "compliance", "", &agent.Subrequest{Input: "check permits"})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	response, ok := reply.Data.(*agent.Response)
	if !ok {
		t.Fatalf("reply data type = %T, want *agent.Response", reply.Data)
	}
	if response.Status != agent.StatusError {
		t.Errorf("response status = %v, want %v", response.Status, agent.StatusError)
	}
	if response.Err == "" {
		t.Error("response should carry the execution error")
	}
}

func TestHub_Request_Timeout(t *testing.T) {
	cfg := config.DefaultHubConfig()
	cfg.Name = "timeout-hub"
	cfg.DefaultTimeout = 100 * time.Millisecond
	h := hub.New(context.Background(), cfg)
	defer h.Shutdown(5 * time.Second)

	// Handler that never responds.
	handler := func(ctx context.Context, msg *messaging.Message, msgCtx *hub.MessageContext) (*messaging.Message, error) {
		return nil, nil
	}

	if err := h.RegisterAgent(&stubAgent{name: "resource"}, handler); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	_, err := h.Request(context.Background(), "orchestrator", "resource", "", "anything")
	if err == nil {
		t.Error("Request() should time out when the handler never responds")
	}
}

func TestHub_Request_LateResponseAfterTimeout(t *testing.T) {
	cfg := config.DefaultHubConfig()
	cfg.Name = "late-hub"
	cfg.DefaultTimeout = 50 * time.Millisecond
	h := hub.New(context.Background(), cfg)
	defer h.Shutdown(5 * time.Second)

	// Handler that answers well after the requester has given up.
	slow := func(ctx context.Context, msg *messaging.Message, msgCtx *hub.MessageContext) (*messaging.Message, error) {
		time.Sleep(200 * time.Millisecond)
		return messaging.NewResponse("resource", msg.From, msg.ID, "too late").Build(), nil
	}
	if err := h.RegisterAgent(&stubAgent{name: "resource"}, slow); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}
	fast := &stubAgent{name: "financial", reply: "ok"}
	if err := h.RegisterAgent(fast, hub.AgentHandler(fast)); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	if _, err := h.Request(context.Background(), "orchestrator", "resource", "", "anything"); err == nil {
		t.Fatal("Request() should time out before the slow handler answers")
	}

	// Let the stale answer arrive; delivery must drop it without panicking.
	time.Sleep(300 * time.Millisecond)

	reply, err := h.Request(context.Background(), "orchestrator", "financial", "", "still alive?")
	if err != nil {
		t.Fatalf("Request() after a stale response error = %v", err)
	}
	if reply == nil {
		t.Fatal("Request() after a stale response returned no reply")
	}
}

func TestHub_Request_UnknownAgent(t *testing.T) {
	h := createTestHub(t)

	_, err := h.Request(context.Background(), "orchestrator", "ghost", "", "data")
	if err == nil {
		t.Error("Request() should fail for unknown destination")
	}
}

func TestHub_Shutdown(t *testing.T) {
	cfg := config.DefaultHubConfig()
	h := hub.New(context.Background(), cfg)

	if err := h.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
