package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Client manages customer contacts, preferences, and interaction history.
type Client struct {
	*baseAgent
}

// NewClient creates the client agent.
func NewClient(deps Deps) *Client {
	a := &Client{baseAgent: newBase(
		"client",
		"Client contacts, preferences, and interaction history.",
		memory.CategoryClients,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "add_client",
		Description: "Record a new client and their contact details.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"contact":{"type":"string"},"notes":{"type":"string"}},"required":["name"]}`),
	}, a.addClient)

	a.registry.MustRegister(ops.Spec{
		Name:        "log_interaction",
		Description: "Log a call, meeting, or message with a client.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"client":{"type":"string"},"summary":{"type":"string"}},"required":["client","summary"]}`),
	}, a.logInteraction)

	a.registry.MustRegister(ops.Spec{
		Name:        "client_history",
		Description: "List recorded interactions with a client.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"client":{"type":"string"}},"required":["client"]}`),
	}, a.clientHistory)

	return a
}

func (a *Client) addClient(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	name := stringArg(args, "name")
	if name == "" {
		return ops.Result{}, fmt.Errorf("add_client requires name")
	}

	content := fmt.Sprintf("Client %s added.", name)
	if contact := stringArg(args, "contact"); contact != "" {
		content = fmt.Sprintf("Client %s added (contact: %s).", name, contact)
	}
	if notes := stringArg(args, "notes"); notes != "" {
		content += " " + notes
	}

	r, err := a.deps.Gateway.Write(ctx, memory.CategoryClients, content, map[string]string{
		"kind":   "client",
		"client": name,
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Client) logInteraction(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	client := stringArg(args, "client")
	summary := stringArg(args, "summary")
	if client == "" || summary == "" {
		return ops.Result{}, fmt.Errorf("log_interaction requires client and summary")
	}

	content := fmt.Sprintf("Interaction with %s: %s", client, summary)
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryClients, content, map[string]string{
		"kind":   "interaction",
		"client": client,
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Client) clientHistory(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	client := stringArg(args, "client")
	if client == "" {
		return ops.Result{}, fmt.Errorf("client_history requires client")
	}

	records, err := a.deps.Gateway.Query(ctx, memory.CategoryClients, memory.Filter{
		Metadata: map[string]string{"client": client},
		Limit:    20,
	})
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: fmt.Sprintf("No records for client %s.", client)}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "History for %s (%d entries):\n", client, len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s\n", r.Content)
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"count": len(records)},
	}, nil
}
