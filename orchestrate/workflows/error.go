package workflows

import (
	"fmt"
	"sort"
	"strings"
)

// ChainError reports a chain execution failure with the step index, the
// item being processed, and the accumulated state at the failure point.
// It unwraps to the underlying error for errors.Is and errors.As.
type ChainError[TItem, TContext any] struct {
	// StepIndex is the 0-based index of the step that failed
	StepIndex int

	// Item is the item being processed when the error occurred
	Item TItem

	// State is the accumulated context at the time of failure
	State TContext

	// Err is the underlying error that caused the failure
	Err error
}

func (e *ChainError[TItem, TContext]) Error() string {
	return fmt.Sprintf("chain failed at step %d: %v", e.StepIndex, e.Err)
}

func (e *ChainError[TItem, TContext]) Unwrap() error {
	return e.Err
}

// TaskError captures the failure of a single parallel task. Index is the
// item's position in the original input slice, so failures can be
// correlated with the delegations that produced them.
type TaskError[TItem any] struct {
	// Index is the 0-based position of the item in the original items slice
	Index int

	// Item is the actual item that failed processing
	Item TItem

	// Err is the underlying error returned by the processor function
	Err error
}

// ParallelResult holds the outcome of a parallel run. Results contains
// only successes and Errors only failures; both are dense slices ordered
// by original item index. A non-nil error from ProcessParallel still
// comes with whatever partial results completed, which is what lets the
// orchestrator answer from the agents that did respond.
type ParallelResult[TItem, TResult any] struct {
	// Results contains all successfully processed items (dense slice, no gaps)
	Results []TResult

	// Errors contains all failed items with context (index, item, error)
	Errors []TaskError[TItem]
}

// ParallelError aggregates task failures from a parallel run. It is
// returned when FailFast is set and anything failed, or when every item
// failed. Unwrap returns all underlying errors for Go 1.20+ multi-error
// matching.
type ParallelError[TItem any] struct {
	// Errors contains all task failures that contributed to this error
	Errors []TaskError[TItem]
}

// Error summarizes the failures, categorized by error message when more
// than one task failed.
func (e *ParallelError[TItem]) Error() string {
	if len(e.Errors) == 0 {
		return "parallel execution failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("parallel execution failed: item %d: %v",
			e.Errors[0].Index, e.Errors[0].Err,
		)
	}

	errorCounts := make(map[string]int)
	for _, taskErr := range e.Errors {
		errorCounts[taskErr.Err.Error()]++
	}

	type errorSummary struct {
		msg   string
		count int
	}
	var summaries []errorSummary
	for msg, count := range errorCounts {
		summaries = append(summaries, errorSummary{msg, count})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].count > summaries[j].count
	})

	var parts []string
	for _, s := range summaries {
		if s.count == 1 {
			parts = append(parts, fmt.Sprintf("'%s' (1 item)", s.msg))
		} else {
			parts = append(parts, fmt.Sprintf("'%s' (%d items)", s.msg, s.count))
		}
	}

	return fmt.Sprintf(
		"parallel execution failed: %d items failed with %d error types: %s",
		len(e.Errors), len(errorCounts), strings.Join(parts, ", "),
	)
}

func (e *ParallelError[TItem]) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, taskErr := range e.Errors {
		errs[i] = taskErr.Err
	}
	return errs
}
