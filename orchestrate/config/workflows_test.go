package config_test

import (
	"testing"

	"github.com/tailored-agentic-units/foreman/orchestrate/config"
)

func TestChainConfig_Merge(t *testing.T) {
	base := config.DefaultChainConfig()
	if base.CaptureIntermediateStates {
		t.Fatal("default chain config should not capture intermediate states")
	}

	source := config.ChainConfig{CaptureIntermediateStates: true, Observer: "noop"}
	base.Merge(&source)

	if !base.CaptureIntermediateStates {
		t.Error("Merge() should adopt CaptureIntermediateStates from source")
	}
	if base.Observer != "noop" {
		t.Errorf("Merge() observer = %q, want noop", base.Observer)
	}
}

func TestChainConfig_Merge_EmptySourceKeepsBase(t *testing.T) {
	base := config.DefaultChainConfig()
	base.CaptureIntermediateStates = true

	base.Merge(&config.ChainConfig{})

	if !base.CaptureIntermediateStates {
		t.Error("Merge() with empty source should keep the base setting")
	}
	if base.Observer != "slog" {
		t.Errorf("Merge() observer = %q, want slog", base.Observer)
	}
}

func TestParallelConfig_Merge(t *testing.T) {
	base := config.DefaultParallelConfig()
	failFast := false
	source := config.ParallelConfig{MaxWorkers: 4, FailFastNil: &failFast}

	base.Merge(&source)

	if base.MaxWorkers != 4 {
		t.Errorf("Merge() MaxWorkers = %d, want 4", base.MaxWorkers)
	}
	if base.FailFast() {
		t.Error("Merge() should adopt the explicit FailFast override")
	}
	if base.WorkerCap != 16 {
		t.Errorf("Merge() WorkerCap = %d, want default 16", base.WorkerCap)
	}
}

func TestParallelConfig_FailFastDefault(t *testing.T) {
	var cfg config.ParallelConfig
	if !cfg.FailFast() {
		t.Error("FailFast() should default to true when unset")
	}
}
