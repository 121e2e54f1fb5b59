package planner_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/planner"
)

type fakeProvider struct {
	reply string
	err   error
	calls int
	last  []protocol.Message
}

func (f *fakeProvider) Chat(_ context.Context, messages []protocol.Message) (string, error) {
	f.calls++
	f.last = messages
	return f.reply, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func testCatalog() []planner.AgentInfo {
	return []planner.AgentInfo{
		{Name: "financial", Description: "budgets, expenses, invoices", Operations: []string{"create_budget", "record_transaction"}},
		{Name: "project", Description: "tasks, schedules, timelines"},
		{Name: "compliance", Description: "permits, codes, inspections"},
	}
}

func TestClassify_ModelReply(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["financial", "project"], "params": {"project": "riverside"}, "confidence": 0.92}`}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "what is the riverside budget and schedule", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Origin != planner.OriginModel {
		t.Errorf("Classify() origin = %q, want %q", c.Origin, planner.OriginModel)
	}
	if len(c.Agents) != 2 || c.Agents[0] != "financial" || c.Agents[1] != "project" {
		t.Errorf("Classify() agents = %v, want [financial project]", c.Agents)
	}
	if c.Params["project"] != "riverside" {
		t.Errorf("Classify() params = %v, want project=riverside", c.Params)
	}
	if c.Confidence != 0.92 {
		t.Errorf("Classify() confidence = %v, want 0.92", c.Confidence)
	}
}

func TestClassify_ModelReplyWithFences(t *testing.T) {
	provider := &fakeProvider{reply: "```json\n{\"agents\": [\"compliance\"], \"confidence\": 0.8}\n```"}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "is the permit approved", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(c.Agents) != 1 || c.Agents[0] != "compliance" {
		t.Errorf("Classify() agents = %v, want [compliance]", c.Agents)
	}
}

func TestClassify_UnknownAgentsFiltered(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["weather", "Financial"], "confidence": 0.7}`}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "budget question", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(c.Agents) != 1 || c.Agents[0] != "financial" {
		t.Errorf("Classify() agents = %v, want [financial]", c.Agents)
	}
}

func TestClassify_ModelFailureFallsBackToKeywords(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "update the project budget", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Origin != planner.OriginKeyword {
		t.Errorf("Classify() origin = %q, want %q", c.Origin, planner.OriginKeyword)
	}
	if len(c.Agents) == 0 {
		t.Error("Classify() returned no agents from keyword fallback")
	}
}

func TestClassify_MalformedModelReplyFallsBack(t *testing.T) {
	provider := &fakeProvider{reply: "I think the financial agent should handle this."}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "send the invoice", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Origin != planner.OriginKeyword {
		t.Errorf("Classify() origin = %q, want %q", c.Origin, planner.OriginKeyword)
	}
}

func TestClassify_NoIntent(t *testing.T) {
	p := planner.New(nil, testCatalog(), nil)

	_, err := p.Classify(context.Background(), "tell me a joke about penguins", nil)
	if !errors.Is(err, planner.ErrNoIntent) {
		t.Errorf("Classify() error = %v, want %v", err, planner.ErrNoIntent)
	}
}

func TestClassify_KeywordOnly(t *testing.T) {
	p := planner.New(nil, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "when is the next inspection for the permit", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Origin != planner.OriginKeyword {
		t.Errorf("Classify() origin = %q, want %q", c.Origin, planner.OriginKeyword)
	}
	if c.Agents[0] != "compliance" {
		t.Errorf("Classify() top agent = %q, want compliance", c.Agents[0])
	}
}

func TestClassify_HistoryIncluded(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["project"], "confidence": 0.9}`}
	p := planner.New(provider, testCatalog(), nil)

	history := []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "we were discussing the riverside build"),
	}
	if _, err := p.Classify(context.Background(), "what is the status", history); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	// system prompt + history + current input
	if len(provider.last) != 3 {
		t.Fatalf("provider received %d messages, want 3", len(provider.last))
	}
	if provider.last[1].Content != history[0].Content {
		t.Errorf("history message not forwarded: got %q", provider.last[1].Content)
	}
}

func TestSynthesize_Model(t *testing.T) {
	provider := &fakeProvider{reply: "The budget is $50,000 and work starts Monday."}
	p := planner.New(provider, testCatalog(), nil)

	parts := []planner.Contribution{
		{Agent: "financial", Content: "Budget: $50,000"},
		{Agent: "project", Content: "Start date: Monday"},
	}
	reply, err := p.Synthesize(context.Background(), "budget and start date?", parts)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if reply != provider.reply {
		t.Errorf("Synthesize() = %q, want model reply", reply)
	}
}

func TestSynthesize_FallbackConcatenation(t *testing.T) {
	provider := &fakeProvider{err: errors.New("unavailable")}
	p := planner.New(provider, testCatalog(), nil)

	parts := []planner.Contribution{
		{Agent: "financial", Content: "Budget: $50,000"},
		{Agent: "project", Content: "Start date: Monday"},
	}
	reply, err := p.Synthesize(context.Background(), "budget and start date?", parts)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !strings.Contains(reply, "Budget: $50,000") || !strings.Contains(reply, "Start date: Monday") {
		t.Errorf("Synthesize() fallback missing contributions: %q", reply)
	}
}

func TestSynthesize_SinglePartPassthrough(t *testing.T) {
	p := planner.New(nil, testCatalog(), nil)

	reply, err := p.Synthesize(context.Background(), "budget?", []planner.Contribution{
		{Agent: "financial", Content: "Budget: $50,000"},
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if reply != "Budget: $50,000" {
		t.Errorf("Synthesize() = %q, want passthrough content", reply)
	}
}

func TestSynthesize_Empty(t *testing.T) {
	p := planner.New(nil, testCatalog(), nil)
	if _, err := p.Synthesize(context.Background(), "anything", nil); err == nil {
		t.Error("Synthesize(empty) expected error, got nil")
	}
}

func TestClassify_ModelReplyWithOperation(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["financial"], "operation": "create_budget", "params": {"project": "mill", "amount": 10000}, "confidence": 0.95}`}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "create a budget of $10,000 for project mill", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Operation != "create_budget" {
		t.Errorf("Classify() operation = %q, want create_budget", c.Operation)
	}
	if c.Params["project"] != "mill" {
		t.Errorf("Classify() params = %v, want project=mill", c.Params)
	}
}

func TestClassify_OperationInsideParams(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["financial"], "params": {"operation": "record_transaction", "project": "mill", "amount": 250}, "confidence": 0.9}`}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "record a $250 expense on project mill", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Operation != "record_transaction" {
		t.Errorf("Classify() operation = %q, want record_transaction", c.Operation)
	}
	if _, ok := c.Params["operation"]; ok {
		t.Errorf("Classify() params still carry operation key: %v", c.Params)
	}
}

func TestClassify_UnknownOperationDropped(t *testing.T) {
	provider := &fakeProvider{reply: `{"agents": ["project"], "operation": "create_budget", "confidence": 0.9}`}
	p := planner.New(provider, testCatalog(), nil)

	c, err := p.Classify(context.Background(), "set up the schedule", nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	// create_budget is not registered on the project agent, so it must not
	// be forwarded.
	if c.Operation != "" {
		t.Errorf("Classify() operation = %q, want empty", c.Operation)
	}
}
