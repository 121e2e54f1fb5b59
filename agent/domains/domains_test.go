package domains_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/agent/domains"
	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/memory"
)

type fakeProvider struct {
	reply string
	calls int
}

func (f *fakeProvider) Chat(_ context.Context, _ []protocol.Message) (string, error) {
	f.calls++
	return f.reply, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func testDeps(t *testing.T) domains.Deps {
	t.Helper()
	dir := t.TempDir()
	g, err := memory.Open(&memory.Config{
		FactPath:   filepath.Join(dir, "facts.db"),
		VectorPath: filepath.Join(dir, "vectors.db"),
	}, nil)
	if err != nil {
		t.Fatalf("memory.Open() error = %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return domains.Deps{Gateway: g}
}

func exec(t *testing.T, a agent.Agent, op string, params map[string]any) *agent.Response {
	t.Helper()
	resp, err := a.Execute(context.Background(), &agent.Subrequest{
		ID:        "req-1",
		Input:     "test input",
		Operation: op,
		Params:    params,
	})
	if err != nil {
		t.Fatalf("Execute(%s) error = %v", op, err)
	}
	if resp.Status != agent.StatusOK {
		t.Fatalf("Execute(%s) status = %q, want ok (error: %s)", op, resp.Status, resp.Err)
	}
	return resp
}

func TestRegisterAll(t *testing.T) {
	reg := agent.NewRegistry()
	if err := domains.RegisterAll(reg, testDeps(t)); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	infos := reg.List()
	want := []string{"analytics", "client", "compliance", "document", "financial", "project", "resource"}
	if len(infos) != len(want) {
		t.Fatalf("List() returned %d agents, want %d", len(infos), len(want))
	}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, info.Name, want[i])
		}
	}

	for _, name := range want {
		a, err := reg.Get(name)
		if err != nil {
			t.Errorf("Get(%s) error = %v", name, err)
			continue
		}
		if a.Name() != name {
			t.Errorf("agent name = %q, want %q", a.Name(), name)
		}
	}
}

func TestFinancial_BudgetLifecycle(t *testing.T) {
	a := domains.NewFinancial(testDeps(t))

	resp := exec(t, a, "create_budget", map[string]any{"project": "riverside", "amount": 50000.0})
	if !strings.Contains(resp.Content, "50000.00") {
		t.Errorf("create_budget content = %q, want amount included", resp.Content)
	}

	resp = exec(t, a, "get_budget", map[string]any{"project": "riverside"})
	if !strings.Contains(resp.Content, "riverside") || !strings.Contains(resp.Content, "50000.00") {
		t.Errorf("get_budget content = %q, want budget details", resp.Content)
	}

	exec(t, a, "record_transaction", map[string]any{"project": "riverside", "amount": 12000.0, "description": "framing lumber"})
	exec(t, a, "record_transaction", map[string]any{"project": "riverside", "amount": 3000.0})

	resp = exec(t, a, "financial_report", map[string]any{"project": "riverside"})
	if resp.Data["spent"] != 15000.0 {
		t.Errorf("financial_report spent = %v, want 15000", resp.Data["spent"])
	}
	if resp.Data["remaining"] != 35000.0 {
		t.Errorf("financial_report remaining = %v, want 35000", resp.Data["remaining"])
	}
}

func TestFinancial_GetBudgetMissing(t *testing.T) {
	a := domains.NewFinancial(testDeps(t))

	resp := exec(t, a, "get_budget", map[string]any{"project": "ghost"})
	if !strings.Contains(resp.Content, "No budget") {
		t.Errorf("get_budget content = %q, want a no-budget message", resp.Content)
	}
}

func TestFinancial_MissingParams(t *testing.T) {
	a := domains.NewFinancial(testDeps(t))

	_, err := a.Execute(context.Background(), &agent.Subrequest{
		Operation: "create_budget",
		Params:    map[string]any{"project": "riverside"},
	})
	if err == nil {
		t.Error("create_budget without amount expected error, got nil")
	}
}

func TestProject_TaskLifecycle(t *testing.T) {
	a := domains.NewProject(testDeps(t))

	exec(t, a, "create_project", map[string]any{"name": "riverside", "description": "lakefront remodel"})
	exec(t, a, "create_task", map[string]any{"name": "Pour foundation", "project": "riverside"})
	exec(t, a, "create_task", map[string]any{"name": "Frame walls", "project": "riverside"})

	resp := exec(t, a, "list_tasks", map[string]any{"project": "riverside"})
	if resp.Data["count"] != 2 {
		t.Errorf("list_tasks count = %v, want 2", resp.Data["count"])
	}
	if !strings.Contains(resp.Content, "Pour foundation") {
		t.Errorf("list_tasks content = %q, want task names", resp.Content)
	}

	resp = exec(t, a, "update_task_status", map[string]any{"task": "Pour foundation", "status": "complete"})
	if !strings.Contains(resp.Content, "complete") {
		t.Errorf("update_task_status content = %q, want status", resp.Content)
	}
}

func TestDocument_StoreAndSearch(t *testing.T) {
	a := domains.NewDocument(testDeps(t))

	long := strings.Repeat("General conditions apply to all work. ", 40) +
		"The electrical subcontractor shall obtain all required permits before rough-in."
	resp := exec(t, a, "store_document", map[string]any{"name": "contract.pdf", "content": long})
	chunks, ok := resp.Data["chunks"].(int)
	if !ok || chunks < 2 {
		t.Errorf("store_document chunks = %v, want at least 2 for a long document", resp.Data["chunks"])
	}

	resp = exec(t, a, "search_documents", map[string]any{"query": "electrical permits rough-in"})
	if !strings.Contains(resp.Content, "contract.pdf") {
		t.Errorf("search_documents content = %q, want a hit from contract.pdf", resp.Content)
	}
}

func TestClient_History(t *testing.T) {
	a := domains.NewClient(testDeps(t))

	exec(t, a, "add_client", map[string]any{"name": "Hernandez", "contact": "555-0100"})
	exec(t, a, "log_interaction", map[string]any{"client": "Hernandez", "summary": "discussed kitchen layout"})

	resp := exec(t, a, "client_history", map[string]any{"client": "Hernandez"})
	if resp.Data["count"] != 2 {
		t.Errorf("client_history count = %v, want 2", resp.Data["count"])
	}
	if !strings.Contains(resp.Content, "kitchen layout") {
		t.Errorf("client_history content = %q, want interaction summary", resp.Content)
	}
}

func TestResource_AddAndList(t *testing.T) {
	a := domains.NewResource(testDeps(t))

	exec(t, a, "add_resource", map[string]any{"name": "2x4 lumber", "type": "material", "quantity": 500.0, "project": "riverside"})
	exec(t, a, "add_resource", map[string]any{"name": "excavator", "type": "equipment"})

	resp := exec(t, a, "list_resources", map[string]any{"type": "material"})
	if resp.Data["count"] != 1 {
		t.Errorf("list_resources count = %v, want 1", resp.Data["count"])
	}
	if !strings.Contains(resp.Content, "2x4 lumber") {
		t.Errorf("list_resources content = %q, want the material", resp.Content)
	}
}

func TestCompliance_Check(t *testing.T) {
	a := domains.NewCompliance(testDeps(t))

	exec(t, a, "add_requirement", map[string]any{"requirement": "Electrical permit required before rough-in", "project": "riverside"})
	exec(t, a, "add_requirement", map[string]any{"requirement": "OSHA fall protection above six feet", "status": "met"})

	resp := exec(t, a, "check_compliance", map[string]any{"query": "electrical permit"})
	if !strings.Contains(resp.Content, "Electrical permit") {
		t.Errorf("check_compliance content = %q, want matching requirement", resp.Content)
	}
}

func TestAnalytics_Overviews(t *testing.T) {
	deps := testDeps(t)
	fin := domains.NewFinancial(deps)
	exec(t, fin, "create_budget", map[string]any{"project": "riverside", "amount": 50000.0})

	a := domains.NewAnalytics(deps)
	resp := exec(t, a, "memory_overview", nil)
	if resp.Data["financial"] != 1 {
		t.Errorf("memory_overview financial count = %v, want 1", resp.Data["financial"])
	}

	resp = exec(t, a, "project_overview", map[string]any{"project": "riverside"})
	if resp.Data["records"] != 1 {
		t.Errorf("project_overview records = %v, want 1", resp.Data["records"])
	}

	resp = exec(t, a, "project_overview", map[string]any{"project": "ghost"})
	if !strings.Contains(resp.Content, "Nothing on record") {
		t.Errorf("project_overview content = %q, want nothing-on-record message", resp.Content)
	}
}

func TestFallback_WithoutProvider(t *testing.T) {
	deps := testDeps(t)
	fin := domains.NewFinancial(deps)
	exec(t, fin, "create_budget", map[string]any{"project": "riverside", "amount": 50000.0})

	resp, err := fin.Execute(context.Background(), &agent.Subrequest{
		ID:    "req-2",
		Input: "what do we know about the riverside budget",
	})
	if err != nil {
		t.Fatalf("Execute(fallback) error = %v", err)
	}
	if resp.Status != agent.StatusOK {
		t.Fatalf("Execute(fallback) status = %q, want ok", resp.Status)
	}
	if !strings.Contains(resp.Content, "Budget for project riverside") {
		t.Errorf("fallback content = %q, want the stored budget surfaced", resp.Content)
	}
}

func TestFallback_WithProvider(t *testing.T) {
	deps := testDeps(t)
	provider := &fakeProvider{reply: "The riverside budget is $50,000."}
	deps.Provider = provider

	fin := domains.NewFinancial(deps)
	resp, err := fin.Execute(context.Background(), &agent.Subrequest{
		ID:    "req-3",
		Input: "what is the riverside budget",
	})
	if err != nil {
		t.Fatalf("Execute(fallback) error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if resp.Content != provider.reply {
		t.Errorf("fallback content = %q, want provider reply", resp.Content)
	}
}

func TestDocument_StoreMultibyteContent(t *testing.T) {
	deps := testDeps(t)
	a := domains.NewDocument(deps)

	// Cyrillic text: every rune is two bytes, so any byte-indexed cut
	// would land mid-character.
	long := strings.Repeat("смета на бетон и арматуру для объекта ", 40)
	resp := exec(t, a, "store_document", map[string]any{"name": "смета.txt", "content": long})
	chunks, _ := resp.Data["chunks"].(int)
	if chunks < 2 {
		t.Fatalf("store_document chunks = %v, want at least 2", resp.Data["chunks"])
	}

	records, err := deps.Gateway.Query(context.Background(), memory.CategoryDocuments, memory.Filter{
		Metadata: map[string]string{"kind": "document_chunk", "document": "смета.txt"},
	})
	if err != nil {
		t.Fatalf("gateway.Query() error = %v", err)
	}
	if len(records) != chunks {
		t.Fatalf("stored chunks = %d, want %d", len(records), chunks)
	}
	for _, r := range records {
		if !utf8.ValidString(r.Content) {
			t.Errorf("chunk %s is not valid UTF-8", r.Metadata["chunk"])
		}
	}
}
