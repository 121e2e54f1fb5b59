package workflows

// ProgressFunc reports workflow progress. It is called after each
// successful step or task completion with the completed count
// (1-indexed), the total, and the most recent result or state snapshot.
// It is never called for failures.
type ProgressFunc[TContext any] func(
	completed int,
	total int,
	state TContext,
)
