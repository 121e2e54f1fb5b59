package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/foreman/observability"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  string
	}{
		{observability.LevelVerbose, "DEBUG"},
		{observability.LevelInfo, "INFO"},
		{observability.LevelWarning, "WARN"},
		{observability.LevelError, "ERROR"},
		{observability.Level(25), "FATAL"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEmit(t *testing.T) {
	rec := &recordingObserver{}

	observability.Emit(context.Background(), rec, "test.event", observability.LevelInfo, "test", map[string]any{"k": "v"})

	if len(rec.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(rec.events))
	}
	event := rec.events[0]
	if event.Type != "test.event" {
		t.Errorf("Type = %q, want %q", event.Type, "test.event")
	}
	if event.Source != "test" {
		t.Errorf("Source = %q, want %q", event.Source, "test")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp not stamped")
	}
}

func TestEmit_NilObserver(t *testing.T) {
	// Must not panic.
	observability.Emit(context.Background(), nil, "test.event", observability.LevelInfo, "test", nil)
}

func TestSlogObserver_OnEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	observability.Emit(context.Background(), obs, "memory.write", observability.LevelInfo, "memory.Gateway", map[string]any{
		"category": "projects",
	})

	out := buf.String()
	if !strings.Contains(out, "memory.write") {
		t.Errorf("log output missing event type: %s", out)
	}
	if !strings.Contains(out, "category=projects") {
		t.Errorf("log output missing data attribute: %s", out)
	}
}

func TestMultiObserver_FiltersNil(t *testing.T) {
	first := &recordingObserver{}
	second := &recordingObserver{}
	multi := observability.NewMultiObserver(first, nil, second)

	observability.Emit(context.Background(), multi, "test.event", observability.LevelInfo, "test", nil)

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Errorf("events delivered = (%d, %d), want (1, 1)", len(first.events), len(second.events))
	}
}

func TestGetObserver(t *testing.T) {
	if _, err := observability.GetObserver("noop"); err != nil {
		t.Errorf("GetObserver(noop) error = %v", err)
	}
	if _, err := observability.GetObserver("slog"); err != nil {
		t.Errorf("GetObserver(slog) error = %v", err)
	}
	if _, err := observability.GetObserver("missing"); err == nil {
		t.Error("GetObserver(missing) should fail")
	}
}

func TestRegisterObserver_Replace(t *testing.T) {
	rec := &recordingObserver{}
	observability.RegisterObserver("recording", rec)

	obs, err := observability.GetObserver("recording")
	if err != nil {
		t.Fatalf("GetObserver() error = %v", err)
	}
	if obs != observability.Observer(rec) {
		t.Error("GetObserver() returned a different observer than registered")
	}
}

func TestSlogObserver_FloorFiltersVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger).WithFloor(observability.LevelWarning)

	observability.Emit(context.Background(), obs, "hub.delivered", observability.LevelVerbose, "hub", nil)
	if buf.Len() != 0 {
		t.Errorf("verbose event below the floor was logged: %s", buf.String())
	}

	observability.Emit(context.Background(), obs, "hub.dropped", observability.LevelError, "hub", nil)
	if !strings.Contains(buf.String(), "hub.dropped") {
		t.Errorf("error event above the floor missing: %s", buf.String())
	}
}

func TestSlogObserver_NilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	obs := observability.NewSlogObserver(nil)
	observability.Emit(context.Background(), obs, "memory.write", observability.LevelInfo, "memory", nil)

	if !strings.Contains(buf.String(), "memory.write") {
		t.Errorf("event not routed through the default logger: %s", buf.String())
	}
}
