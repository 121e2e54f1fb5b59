package workflows

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/orchestrate/config"
)

// TaskProcessor processes a single item independently of all others.
// The orchestrator's primary use is one hub request per delegated agent,
// but the type is fully generic and works for any fan-out.
type TaskProcessor[TItem, TResult any] func(
	ctx context.Context,
	item TItem,
) (TResult, error)

type indexedItem[TItem any] struct {
	index int
	item  TItem
}

type indexedResult[TResult any] struct {
	index  int
	result TResult
	err    error
}

// ProcessParallel distributes items over a worker pool and collects the
// results in original item order.
//
// With FailFast enabled (the default) the first error cancels the
// remaining workers and the call returns a ParallelError alongside any
// partial results. With FailFast disabled every item is attempted, the
// failures land in ParallelResult.Errors, and an error is returned only
// when all items failed. The orchestrator fans out to agents in the
// second mode so one failing specialist never discards the others'
// answers.
//
// Worker count comes from cfg: an explicit MaxWorkers, or auto-detection
// capped by WorkerCap and the item count. Events are emitted for the run
// and for each worker start and completion.
//
// Example:
//
//	answers, err := workflows.ProcessParallel(ctx, cfg, delegations,
//		func(ctx context.Context, d Delegation) (*agent.Response, error) {
//			return dispatch(ctx, d)
//		}, nil)
func ProcessParallel[TItem, TResult any](
	ctx context.Context,
	cfg config.ParallelConfig,
	items []TItem,
	processor TaskProcessor[TItem, TResult],
	progress ProgressFunc[TResult],
) (ParallelResult[TItem, TResult], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return ParallelResult[TItem, TResult]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	if len(items) == 0 {
		emitParallelStart(ctx, observer, 0, 0, cfg.FailFast(), progress != nil)
		emitParallelComplete(ctx, observer, 0, 0, false)
		return ParallelResult[TItem, TResult]{
			Results: []TResult{},
			Errors:  []TaskError[TItem]{},
		}, nil
	}

	workerCount := calculateWorkerCount(cfg.MaxWorkers, cfg.WorkerCap, len(items))
	emitParallelStart(ctx, observer, len(items), workerCount, cfg.FailFast(), progress != nil)

	workQueue := make(chan indexedItem[TItem], len(items))
	resultChannel := make(chan indexedResult[TResult], len(items))
	done := make(chan struct{})

	var results []TResult
	var errors []TaskError[TItem]

	// Collect in the background so full result buffers never deadlock
	// the workers.
	go func() {
		results, errors = collectResults(resultChannel, len(items), items)
		close(done)
	}()

	var cancelCtx context.Context
	var cancel context.CancelFunc
	if cfg.FailFast() {
		cancelCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	} else {
		cancelCtx = ctx
		cancel = func() {}
	}

	var wg sync.WaitGroup
	var completed atomic.Int32

	for i := range workerCount {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processWorker(
				cancelCtx,
				workerID,
				workQueue,
				resultChannel,
				processor,
				progress,
				&completed,
				len(items),
				observer,
				cfg.FailFast(),
				cancel,
			)
		}(i)
	}

	for i, item := range items {
		workQueue <- indexedItem[TItem]{index: i, item: item}
	}
	close(workQueue)

	wg.Wait()
	close(resultChannel)
	<-done

	if ctx.Err() != nil {
		emitParallelComplete(ctx, observer, len(results), len(errors), true)
		return ParallelResult[TItem, TResult]{
			Results: results,
			Errors:  errors,
		}, fmt.Errorf("parallel execution cancelled: %w", ctx.Err())
	}

	if len(errors) > 0 && (cfg.FailFast() || len(results) == 0) {
		emitParallelComplete(ctx, observer, len(results), len(errors), true)
		return ParallelResult[TItem, TResult]{
			Results: results,
			Errors:  errors,
		}, &ParallelError[TItem]{Errors: errors}
	}

	emitParallelComplete(ctx, observer, len(results), len(errors), false)

	return ParallelResult[TItem, TResult]{
		Results: results,
		Errors:  errors,
	}, nil
}

func emitParallelStart(ctx context.Context, observer observability.Observer, itemCount, workerCount int, failFast, hasProgress bool) {
	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"item_count":            itemCount,
			"worker_count":          workerCount,
			"fail_fast":             failFast,
			"has_progress_callback": hasProgress,
		},
	})
}

func emitParallelComplete(ctx context.Context, observer observability.Observer, processed, failed int, errored bool) {
	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"items_processed": processed,
			"items_failed":    failed,
			"error":           errored,
		},
	})
}

// calculateWorkerCount resolves the pool size. MaxWorkers wins when set;
// otherwise min(NumCPU*2, workerCap, itemCount), at least 1.
func calculateWorkerCount(maxWorkers, workerCap, itemCount int) int {
	if maxWorkers > 0 {
		return maxWorkers
	}

	workers := min(min(runtime.NumCPU()*2, workerCap), itemCount)

	if workers <= 0 {
		workers = 1
	}

	return workers
}

// processWorker drains the work queue until it closes or the context
// ends, sending an indexed result per item. On failure with failFast set
// it cancels the shared context and exits.
func processWorker[TItem, TResult any](
	ctx context.Context,
	workerID int,
	workQueue <-chan indexedItem[TItem],
	resultChannel chan<- indexedResult[TResult],
	processor TaskProcessor[TItem, TResult],
	progress ProgressFunc[TResult],
	completed *atomic.Int32,
	total int,
	observer observability.Observer,
	failFast bool,
	cancel context.CancelFunc,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-workQueue:
			if !ok {
				return
			}

			observer.OnEvent(ctx, observability.Event{
				Type:      EventWorkerStart,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "workflows.ProcessParallel",
				Data: map[string]any{
					"worker_id":   workerID,
					"item_index":  work.index,
					"total_items": total,
				},
			})

			result, err := processor(ctx, work.item)

			observer.OnEvent(ctx, observability.Event{
				Type:      EventWorkerComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "workflows.ProcessParallel",
				Data: map[string]any{
					"worker_id":   workerID,
					"item_index":  work.index,
					"total_items": total,
					"error":       err != nil,
				},
			})

			if err != nil {
				resultChannel <- indexedResult[TResult]{
					index: work.index,
					err:   err,
				}
				if failFast {
					cancel()
					return
				}
			} else {
				resultChannel <- indexedResult[TResult]{
					index:  work.index,
					result: result,
				}
				if progress != nil {
					count := completed.Add(1)
					progress(int(count), total, result)
				}
			}
		}
	}
}

// collectResults drains the result channel and rebuilds original item
// order by walking indices 0..itemCount, splitting successes from
// failures into dense slices.
func collectResults[TItem, TResult any](
	resultChannel <-chan indexedResult[TResult],
	itemCount int,
	items []TItem,
) ([]TResult, []TaskError[TItem]) {
	resultMap := make(map[int]TResult)
	errorMap := make(map[int]error)

	for result := range resultChannel {
		if result.err != nil {
			errorMap[result.index] = result.err
		} else {
			resultMap[result.index] = result.result
		}
	}

	results := make([]TResult, 0, len(resultMap))
	errors := make([]TaskError[TItem], 0, len(errorMap))

	for i := range itemCount {
		if result, ok := resultMap[i]; ok {
			results = append(results, result)
		}
		if err, ok := errorMap[i]; ok {
			errors = append(errors, TaskError[TItem]{
				Index: i,
				Item:  items[i],
				Err:   err,
			})
		}
	}

	return results, errors
}
