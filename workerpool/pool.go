// Package workerpool runs independent tasks with bounded parallelism and a
// per-task deadline. A task that misses its deadline is abandoned and its
// slot in the output is filled by a caller-supplied placeholder, so one
// slow task never blocks the rest of the batch.
package workerpool

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool holds the sizing knobs shared by every batch submitted to it.
type Pool struct {
	workers int
	timeout time.Duration
}

// New returns a pool of the given size. Non-positive arguments fall back
// to one worker and one minute.
func New(workers int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Pool{workers: workers, timeout: timeout}
}

// Map runs task once per input, at most p.workers at a time, and returns
// results index-aligned with inputs. Each task gets its own deadline;
// cancellation of an abandoned task is best-effort (its context is
// cancelled, but the goroutine runs until it notices). Failures and
// timeouts are absorbed by placeholder, so Map always returns a full
// result set.
func Map[I, O any](ctx context.Context, p *Pool, inputs []I, task func(context.Context, I) (O, error), placeholder func(I, error) O) []O {
	results := make([]O, len(inputs))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = runOne(ctx, p.timeout, in, task, placeholder)
			return nil
		})
	}
	g.Wait()
	return results
}

func runOne[I, O any](ctx context.Context, timeout time.Duration, in I, task func(context.Context, I) (O, error), placeholder func(I, error) O) O {
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value O
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := task(taskCtx, in)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return placeholder(in, out.err)
		}
		return out.value
	case <-taskCtx.Done():
		return placeholder(in, taskCtx.Err())
	}
}
