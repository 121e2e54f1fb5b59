package config

// ChainConfig configures sequential chain execution.
//
// The Observer field names a registered observer implementation so the
// configuration stays JSON-friendly; resolution happens at run time.
type ChainConfig struct {
	// CaptureIntermediateStates captures state after each step.
	// When true, ChainResult.Intermediate holds every state including the
	// initial one. When false, only the final state is returned.
	CaptureIntermediateStates bool `json:"capture_intermediate_states"`

	// Observer names the observer implementation ("noop", "slog", etc.)
	Observer string `json:"observer"`
}

// DefaultChainConfig returns sensible defaults for chain execution.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		CaptureIntermediateStates: false,
		Observer:                  "slog",
	}
}

func (c *ChainConfig) Merge(source *ChainConfig) {
	if source.CaptureIntermediateStates {
		c.CaptureIntermediateStates = true
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// ParallelConfig configures the parallel fan-out pattern.
//
// Worker pool sizing:
//   - MaxWorkers = 0: auto-detect min(NumCPU*2, WorkerCap, item count)
//   - MaxWorkers > 0: exact worker count
//
// Error handling:
//   - FailFast = true: stop on first error, cancel remaining workers
//   - FailFast = false: process everything, collect all errors
type ParallelConfig struct {
	// MaxWorkers specifies exact worker pool size (0 = auto-detect)
	MaxWorkers int `json:"max_workers"`

	// WorkerCap limits auto-detected workers (default: 16)
	WorkerCap int `json:"worker_cap"`

	// FailFastNil controls error handling. Use the FailFast() method to
	// read it. A pointer distinguishes unset (defaults to true) from an
	// explicit false.
	FailFastNil *bool `json:"fail_fast"`

	// Observer names the observer implementation ("noop", "slog", etc.)
	Observer string `json:"observer"`
}

func (c *ParallelConfig) FailFast() bool {
	if c.FailFastNil == nil {
		return true
	}
	return *c.FailFastNil
}

// DefaultParallelConfig returns sensible defaults for parallel execution.
// The 2x CPU auto-detection multiplier suits I/O-bound work such as agent
// delegations that spend most of their time on model or storage calls.
func DefaultParallelConfig() ParallelConfig {
	failFast := true
	return ParallelConfig{
		MaxWorkers:  0,
		WorkerCap:   16,
		FailFastNil: &failFast,
		Observer:    "slog",
	}
}

func (c *ParallelConfig) Merge(source *ParallelConfig) {
	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}

	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}

	if source.FailFastNil != nil {
		c.FailFastNil = source.FailFastNil
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
