package schedule

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Stage is one pipeline step: it transforms an item, yielding cooperatively
// by checking ctx between units of work a caller considers interruptible.
type Stage[T any] func(context.Context, T) (T, error)

// MapFunc is a single-stage transform from one item type to another, used
// by FanOut/RunCompute/RunIO where no per-item pipelining across stages is
// needed.
type MapFunc[T, R any] func(context.Context, T) (R, error)

// Pipeline runs items through every stage in order. Each stage gets its own
// worker pool and its own bounded channel to the next stage, so stage 2 can
// start on item 0 while stage 1 is still working through item 50 — true
// pipelining, not a barrier between stages. A stage error is recorded and
// propagated via the returned error, but every item that completed before
// the error (or before ctx's deadline) still appears in Result with
// Done[i] set, so a caller gets a deterministic partial result rather than
// nothing.
func Pipeline[T any](ctx context.Context, cfg Config, items []T, stages ...Stage[T]) (Result[T], error) {
	cfg = cfg.withDefaults()
	ctx, cancel := applyDeadline(ctx, cfg.Deadline)
	defer cancel()

	n := len(items)
	result := Result[T]{Values: make([]T, n), Done: make([]bool, n)}
	for i, v := range items {
		result.Values[i] = v
	}
	if len(stages) == 0 || n == 0 {
		for i := range result.Done {
			result.Done[i] = true
		}
		return result, ctx.Err()
	}

	fail := &errOnce{}

	cur := make(chan indexed[T], cfg.QueueCapacity)
	go func() {
		defer close(cur)
		for i, v := range items {
			select {
			case <-ctx.Done():
				return
			case cur <- indexed[T]{idx: i, val: v}:
			}
		}
	}()

	for _, stage := range stages {
		cur = runStage(ctx, cur, cfg.ComputeWorkers, cfg.QueueCapacity, stage, fail)
	}

	for item := range cur {
		result.Values[item.idx] = item.val
		if item.err == nil {
			result.Done[item.idx] = true
		} else {
			fail.set(item.err)
		}
	}

	if err := fail.get(); err != nil {
		return result, err
	}
	return result, ctx.Err()
}

func runStage[T any](ctx context.Context, in <-chan indexed[T], workers, capacity int, stage Stage[T], fail *errOnce) <-chan indexed[T] {
	out := make(chan indexed[T], capacity)
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for item := range in {
				if item.err != nil {
					forward(ctx, out, item)
					continue
				}
				select {
				case <-ctx.Done():
					item.err = ctx.Err()
					forward(ctx, out, item)
					return nil
				default:
				}
				v, err := stage(ctx, item.val)
				if err == nil {
					item.val = v
				}
				item.err = err
				fail.set(err)
				if !forward(ctx, out, item) {
					return nil
				}
			}
			return nil
		})
	}
	go func() {
		eg.Wait()
		close(out)
	}()
	return out
}

// forward sends item downstream, giving up (without panicking on a closed
// channel) if ctx is cancelled first. Returns false if the worker should
// stop pulling further input.
func forward[T any](ctx context.Context, out chan<- indexed[T], item indexed[T]) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// FanOut runs fn over every item using workers goroutines, returning
// results in input order regardless of completion order. It is the
// single-stage building block RunCompute and RunIO specialize with a pool
// size; use it directly for ad hoc type-changing transforms a Pipeline's
// same-type stages can't express.
func FanOut[T, R any](ctx context.Context, workers int, items []T, fn MapFunc[T, R]) ([]R, error) {
	if workers < 1 {
		workers = 1
	}
	n := len(items)
	results := make([]R, n)
	errs := make([]error, n)

	jobs := make(chan int)
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for i := range jobs {
				v, err := fn(ctx, items[i])
				results[i] = v
				errs[i] = err
			}
			return nil
		})
	}

	go func() {
		defer close(jobs)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	eg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, ctx.Err()
}

// RunCompute fans out over the compute pool, sized to hardware parallelism.
// Use it for CPU-bound work: parsing, hash-consing, the defect analyzers.
func RunCompute[T, R any](ctx context.Context, cfg Config, items []T, fn MapFunc[T, R]) ([]R, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := applyDeadline(ctx, cfg.Deadline)
	defer cancel()
	return FanOut(ctx, cfg.ComputeWorkers, items, fn)
}

// RunIO fans out over the small I/O pool. Use it for work that spends most
// of its time waiting: reading files, running git subprocesses.
func RunIO[T, R any](ctx context.Context, cfg Config, items []T, fn MapFunc[T, R]) ([]R, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := applyDeadline(ctx, cfg.Deadline)
	defer cancel()
	return FanOut(ctx, cfg.IOWorkers, items, fn)
}
