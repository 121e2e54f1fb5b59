package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/orchestrate/config"
)

// StepProcessor processes one item against the accumulated state and
// returns the updated state. An error stops the chain.
type StepProcessor[TItem, TContext any] func(
	ctx context.Context,
	item TItem,
	state TContext,
) (TContext, error)

// ChainResult holds the outcome of a chain run. Final always carries a
// state: the accumulated one on success, the initial one when nothing
// ran. Intermediate is populated only when
// ChainConfig.CaptureIntermediateStates is set; index 0 is the initial
// state, index N the state after step N.
type ChainResult[TContext any] struct {
	Final        TContext
	Intermediate []TContext

	// Steps is the number of steps successfully completed
	Steps int
}

// ProcessChain folds items through the processor sequentially, threading
// the accumulated state from step to step. Processing stops on the first
// error, wrapped in a ChainError that carries the step index, the item,
// and the state at the failure point. Context cancellation is checked
// before each step. An empty item slice returns the initial state with
// zero steps.
//
// The orchestrator uses chains for ordered post-processing such as
// recording a conversation turn after synthesis.
func ProcessChain[TItem, TContext any](
	ctx context.Context,
	cfg config.ChainConfig,
	items []TItem,
	initial TContext,
	processor StepProcessor[TItem, TContext],
	progress ProgressFunc[TContext],
) (ChainResult[TContext], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return ChainResult[TContext]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	result := ChainResult[TContext]{
		Final: initial,
		Steps: 0,
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventChainStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessChain",
		Data: map[string]any{
			"item_count":            len(items),
			"has_progress_callback": progress != nil,
			"capture_intermediate":  cfg.CaptureIntermediateStates,
		},
	})

	if len(items) == 0 {
		emitChainComplete(ctx, observer, 0, "")
		return result, nil
	}

	var intermediate []TContext
	if cfg.CaptureIntermediateStates {
		intermediate = make([]TContext, 0, len(items)+1)
		intermediate = append(intermediate, initial)
	}

	state := initial

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			emitChainComplete(ctx, observer, i, "cancellation")
			return result, &ChainError[TItem, TContext]{
				StepIndex: i,
				Item:      item,
				State:     state,
				Err:       fmt.Errorf("processing cancelled: %w", err),
			}
		}

		observer.OnEvent(ctx, observability.Event{
			Type:      EventStepStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessChain",
			Data: map[string]any{
				"step_index":  i,
				"total_steps": len(items),
			},
		})

		updated, err := processor(ctx, item, state)

		observer.OnEvent(ctx, observability.Event{
			Type:      EventStepComplete,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessChain",
			Data: map[string]any{
				"step_index":  i,
				"total_steps": len(items),
				"error":       err != nil,
			},
		})

		if err != nil {
			emitChainComplete(ctx, observer, i, "processor")
			return result, &ChainError[TItem, TContext]{
				StepIndex: i,
				Item:      item,
				State:     state,
				Err:       err,
			}
		}

		state = updated

		if cfg.CaptureIntermediateStates {
			intermediate = append(intermediate, state)
		}

		if progress != nil {
			progress(i+1, len(items), state)
		}
	}

	result.Final = state
	result.Intermediate = intermediate
	result.Steps = len(items)

	emitChainComplete(ctx, observer, len(items), "")

	return result, nil
}

func emitChainComplete(ctx context.Context, observer observability.Observer, steps int, errorType string) {
	data := map[string]any{
		"steps_completed": steps,
		"error":           errorType != "",
	}
	if errorType != "" {
		data["error_type"] = errorType
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventChainComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessChain",
		Data:      data,
	})
}
