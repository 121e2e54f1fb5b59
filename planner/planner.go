package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/observability"
)

// Event types emitted by the planner.
const (
	EventClassify   observability.EventType = "planner.classify"
	EventSynthesize observability.EventType = "planner.synthesize"
)

// Origin records which mechanism produced a classification.
type Origin string

const (
	OriginModel   Origin = "model"
	OriginKeyword Origin = "keyword"
)

// Classification is the routing decision for one command: which agents
// handle it, which registered operation (if any) the command maps to, and
// what parameters were extracted for it.
type Classification struct {
	Agents     []string       `json:"agents"`
	Operation  string         `json:"operation,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Confidence float64        `json:"confidence"`
	Origin     Origin         `json:"origin"`
}

// AgentInfo describes a routable agent for classification prompts.
type AgentInfo struct {
	Name        string
	Description string
	Operations  []string
}

// Contribution is one agent's labeled output feeding synthesis.
type Contribution struct {
	Agent   string
	Content string
}

// Planner classifies commands and synthesizes unified replies. A nil
// provider is valid: classification falls back to keywords and synthesis to
// concatenation.
type Planner struct {
	provider Provider
	keywords *KeywordClassifier
	catalog  []AgentInfo
	observer observability.Observer
}

// New creates a Planner routing across the given agent catalog. provider
// and observer may be nil.
func New(provider Provider, catalog []AgentInfo, observer observability.Observer) *Planner {
	return &Planner{
		provider: provider,
		keywords: NewKeywordClassifier(),
		catalog:  catalog,
		observer: observer,
	}
}

// Classify determines which agents should handle the input. Model output is
// validated against the catalog; on any model failure the keyword fallback
// decides. Returns ErrNoIntent when neither mechanism finds a target.
func (p *Planner) Classify(ctx context.Context, input string, history []protocol.Message) (Classification, error) {
	if p.provider != nil {
		c, err := p.classifyWithModel(ctx, input, history)
		if err == nil {
			observability.Emit(ctx, p.observer, EventClassify, observability.LevelVerbose, "planner",
				map[string]any{"origin": string(c.Origin), "agents": c.Agents})
			return c, nil
		}
		observability.Emit(ctx, p.observer, EventClassify, observability.LevelWarning, "planner",
			map[string]any{"fallback": "keyword", "error": err.Error()})
	}

	c, err := p.keywords.Classify(input)
	if err != nil {
		return Classification{}, err
	}
	c.Agents = p.known(c.Agents)
	if len(c.Agents) == 0 {
		return Classification{}, ErrNoIntent
	}
	if c.Operation != "" && !p.knownOperation(c.Agents, c.Operation) {
		c.Operation = ""
	}
	observability.Emit(ctx, p.observer, EventClassify, observability.LevelVerbose, "planner",
		map[string]any{"origin": string(c.Origin), "agents": c.Agents})
	return c, nil
}

func (p *Planner) classifyWithModel(ctx context.Context, input string, history []protocol.Message) (Classification, error) {
	messages := []protocol.Message{protocol.NewMessage(protocol.RoleSystem, p.classifyPrompt())}
	messages = append(messages, history...)
	messages = append(messages, protocol.NewMessage(protocol.RoleUser, input))

	reply, err := p.provider.Chat(ctx, messages)
	if err != nil {
		return Classification{}, err
	}

	var parsed struct {
		Agents     []string       `json:"agents"`
		Operation  string         `json:"operation"`
		Params     map[string]any `json:"params"`
		Confidence float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractJSON(reply)), &parsed); err != nil {
		return Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	agents := p.known(parsed.Agents)
	if len(agents) == 0 {
		return Classification{}, ErrNoIntent
	}

	// Some models tuck the operation inside params instead of the top-level
	// field the contract asks for.
	operation := strings.ToLower(strings.TrimSpace(parsed.Operation))
	if operation == "" {
		if v, ok := parsed.Params["operation"].(string); ok {
			operation = strings.ToLower(strings.TrimSpace(v))
			delete(parsed.Params, "operation")
		}
	}
	if operation != "" && !p.knownOperation(agents, operation) {
		operation = ""
	}

	return Classification{
		Agents:     agents,
		Operation:  operation,
		Params:     parsed.Params,
		Confidence: parsed.Confidence,
		Origin:     OriginModel,
	}, nil
}

// knownOperation reports whether op is registered on any of the named
// agents, per the catalog.
func (p *Planner) knownOperation(agents []string, op string) bool {
	selected := make(map[string]bool, len(agents))
	for _, a := range agents {
		selected[a] = true
	}
	for _, info := range p.catalog {
		if !selected[info.Name] {
			continue
		}
		for _, o := range info.Operations {
			if o == op {
				return true
			}
		}
	}
	return false
}

// Synthesize combines agent contributions into one reply. Without a
// provider, or when the model call fails, contributions are joined with
// agent labels.
func (p *Planner) Synthesize(ctx context.Context, input string, parts []Contribution) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("nothing to synthesize")
	}

	if p.provider != nil {
		reply, err := p.synthesizeWithModel(ctx, input, parts)
		if err == nil {
			observability.Emit(ctx, p.observer, EventSynthesize, observability.LevelVerbose, "planner",
				map[string]any{"parts": len(parts), "origin": "model"})
			return reply, nil
		}
		observability.Emit(ctx, p.observer, EventSynthesize, observability.LevelWarning, "planner",
			map[string]any{"fallback": "concat", "error": err.Error()})
	}

	if len(parts) == 1 {
		return parts[0].Content, nil
	}
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s] %s", part.Agent, part.Content)
	}
	return b.String(), nil
}

func (p *Planner) synthesizeWithModel(ctx context.Context, input string, parts []Contribution) (string, error) {
	var b strings.Builder
	b.WriteString("You are an assistant for a construction management company. ")
	b.WriteString("Combine the specialist responses below into one clear answer to the user's request. ")
	b.WriteString("Do not mention the specialists or the combination process.\n\n")
	for _, part := range parts {
		fmt.Fprintf(&b, "Response from %s specialist:\n%s\n\n", part.Agent, part.Content)
	}

	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, b.String()),
		protocol.NewMessage(protocol.RoleUser, input),
	}
	return p.provider.Chat(ctx, messages)
}

func (p *Planner) classifyPrompt() string {
	var b strings.Builder
	b.WriteString("You route requests for a construction management company to specialist agents.\n")
	b.WriteString("Available agents:\n")
	for _, info := range p.catalog {
		fmt.Fprintf(&b, "- %s: %s", info.Name, info.Description)
		if len(info.Operations) > 0 {
			fmt.Fprintf(&b, " (operations: %s)", strings.Join(info.Operations, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReply with JSON only: ")
	b.WriteString(`{"agents": ["name", ...], "operation": "name", "params": {...}, "confidence": 0.0-1.0}. `)
	b.WriteString("List every agent needed to answer. ")
	b.WriteString("When the request maps to one of the listed operations, name it in \"operation\" and put its arguments in \"params\"; otherwise omit both. ")
	b.WriteString("Use an empty agents array when no agent fits.")
	return b.String()
}

// known filters names against the catalog, preserving order and dropping
// duplicates.
func (p *Planner) known(names []string) []string {
	valid := make(map[string]bool, len(p.catalog))
	for _, info := range p.catalog {
		valid[info.Name] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if valid[n] && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	return out
}

// extractJSON strips markdown fences and surrounding prose from a model
// reply, keeping the outermost JSON object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
