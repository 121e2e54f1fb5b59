package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/foreman/app"
	"github.com/tailored-agentic-units/foreman/core/protocol"
	"github.com/tailored-agentic-units/foreman/memory"
)

func testAppConfig(t *testing.T) *app.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := app.DefaultConfig()
	cfg.Observer = "noop"
	cfg.Memory = &memory.Config{
		FactPath:   filepath.Join(dir, "facts.db"),
		VectorPath: filepath.Join(dir, "vectors.db"),
	}
	cfg.Orchestrator.Parallel.Observer = "noop"
	cfg.Orchestrator.Chain.Observer = "noop"
	return cfg
}

func TestNew_AssemblesAllAgents(t *testing.T) {
	a, err := app.New(testAppConfig(t))
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	response, err := a.Query(context.Background(), "what is the budget for project riverside", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(response.Agents) == 0 || response.Agents[0] != "financial" {
		t.Errorf("Agents = %v, want financial first", response.Agents)
	}
	if response.Reply == "" {
		t.Error("Reply should not be empty")
	}
}

func TestNew_QuerySessionContinuity(t *testing.T) {
	a, err := app.New(testAppConfig(t))
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	first, err := a.Query(context.Background(), "create a budget of $10,000 for project mill", "")
	if err != nil {
		t.Fatalf("first Query() error = %v", err)
	}

	second, err := a.Query(context.Background(), "show the budget again", first.SessionID)
	if err != nil {
		t.Fatalf("second Query() error = %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("SessionID = %q, want %q", second.SessionID, first.SessionID)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"name": "site-assistant",
		"observer": "noop",
		"server": {"addr": ":9100"},
		"planner": {"provider": "openai", "openai_model": "gpt-4o"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := app.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Name != "site-assistant" {
		t.Errorf("Name = %q, want %q", cfg.Name, "site-assistant")
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9100")
	}
	if cfg.Planner.OpenAIModel != "gpt-4o" {
		t.Errorf("Planner.OpenAIModel = %q, want %q", cfg.Planner.OpenAIModel, "gpt-4o")
	}
	// Defaults survive for settings the file does not mention.
	if cfg.Server.ShutdownTimeout == 0 {
		t.Error("ShutdownTimeout should keep its default")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := app.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("LoadConfig() should fail for a missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CLICKUP_API_KEY", "pk-test")
	t.Setenv("CLICKUP_WORKSPACE_ID", "ws-9")
	t.Setenv("FOREMAN_DB_PATH", "/var/lib/foreman")

	cfg := app.DefaultConfig()
	cfg.Planner.Provider = "openai"
	cfg.ApplyEnv()

	if cfg.Planner.APIKey != "sk-test" {
		t.Errorf("Planner.APIKey = %q, want env value", cfg.Planner.APIKey)
	}
	if !cfg.ClickUp.Enabled() {
		t.Error("ClickUp should be enabled with key and workspace set")
	}
	if !strings.HasPrefix(cfg.Memory.FactPath, "/var/lib/foreman") {
		t.Errorf("Memory.FactPath = %q, want under FOREMAN_DB_PATH", cfg.Memory.FactPath)
	}
	if cfg.Memory.FactPath == cfg.Memory.VectorPath {
		t.Error("fact and vector paths must differ")
	}
}

func TestApplyEnv_GeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-test")

	cfg := app.DefaultConfig()
	cfg.Planner.Provider = "gemini"
	cfg.ApplyEnv()

	if cfg.Planner.APIKey != "g-test" {
		t.Errorf("Planner.APIKey = %q, want env value", cfg.Planner.APIKey)
	}
}

func openTestGateway(t *testing.T) memory.Gateway {
	t.Helper()
	dir := t.TempDir()
	gateway, err := memory.Open(&memory.Config{
		FactPath:   filepath.Join(dir, "facts.db"),
		VectorPath: filepath.Join(dir, "vectors.db"),
	}, nil)
	if err != nil {
		t.Fatalf("memory.Open() error = %v", err)
	}
	return gateway
}

func TestQuery_CreateBudgetPersistsRecord(t *testing.T) {
	gateway := openTestGateway(t)

	a, err := app.New(testAppConfig(t), app.WithGateway(gateway))
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	response, err := a.Query(context.Background(), "create a budget of $10,000 for project mill", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !strings.Contains(response.Reply, "10000.00") {
		t.Errorf("Reply = %q, want the budget amount echoed", response.Reply)
	}

	records, err := gateway.Query(context.Background(), memory.CategoryFinancial, memory.Filter{
		Metadata: map[string]string{"kind": "budget", "project": "mill"},
	})
	if err != nil {
		t.Fatalf("gateway.Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("financial records = %d, want 1 budget for project mill", len(records))
	}
	if records[0].Metadata["amount"] != "10000.00" {
		t.Errorf("budget amount = %q, want 10000.00", records[0].Metadata["amount"])
	}
}

// scriptedProvider replies with each canned message in turn.
type scriptedProvider struct {
	replies []string
	calls   int
}

func (p *scriptedProvider) Chat(_ context.Context, _ []protocol.Message) (string, error) {
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return reply, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func TestQuery_ModelOperationPersistsRecord(t *testing.T) {
	gateway := openTestGateway(t)
	provider := &scriptedProvider{replies: []string{
		`{"agents": ["financial"], "operation": "record_transaction", "params": {"project": "mill", "amount": 250, "description": "rebar"}, "confidence": 0.95}`,
		"Logged a $250 rebar expense on project mill.",
	}}

	a, err := app.New(testAppConfig(t), app.WithGateway(gateway), app.WithProvider(provider))
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Query(context.Background(), "log the $250 rebar delivery against mill", ""); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	records, err := gateway.Query(context.Background(), memory.CategoryFinancial, memory.Filter{
		Metadata: map[string]string{"kind": "transaction", "project": "mill"},
	})
	if err != nil {
		t.Fatalf("gateway.Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("transaction records = %d, want 1", len(records))
	}
}
