// Package hub provides in-process message routing between the
// orchestrator and the specialized agents.
//
// Every registered agent gets a buffered MessageChannel. A single
// delivery loop polls those channels and dispatches each message to the
// agent's handler on its own goroutine, so one slow agent never stalls
// the others. Request/response correlation uses the request message ID:
// the requester parks on a per-request channel and the handler's reply
// is steered back through ReplyTo.
//
// The routing topology is deliberately a tree. There is no broadcast and
// no pub/sub; agents share state through the memory gateway, not through
// peer messaging.
//
// Typical wiring:
//
//	h := hub.New(ctx, config.DefaultHubConfig())
//	h.RegisterAgent(financial, hub.AgentHandler(financial))
//
//	reply, err := h.Request(ctx, "orchestrator", "financial", sessionID, subrequest)
package hub
