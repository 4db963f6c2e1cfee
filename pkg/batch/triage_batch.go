// Package batch runs bounded fan-out over a slice of inputs on a go-pkgz/pool worker group.
package batch

import (
	"context"
	"fmt"

	"github.com/go-pkgz/pool"
)

// job carries the position of an item so results can be written back in input order.
type job[T any] struct {
	index int
	item  T
}

// Run calls fn for every item with at most workers in flight.
// fn writes its own result; Run only waits. It returns the first error reported by the pool.
func Run[T any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, index int, item T)) error {
	if len(items) == 0 {
		return nil
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	worker := pool.WorkerFunc[job[T]](func(ctx context.Context, j job[T]) error {
		fn(ctx, j.index, j.item)
		return nil
	})

	wg := pool.New[job[T]](workers, worker).
		WithBatchSize(1).
		WithWorkerChanSize(len(items)).
		WithContinueOnError()

	if err := wg.Go(ctx); err != nil {
		return fmt.Errorf("start worker group: %w", err)
	}
	for i, item := range items {
		wg.Submit(job[T]{index: i, item: item})
	}
	if err := wg.Close(ctx); err != nil {
		return fmt.Errorf("wait worker group: %w", err)
	}
	return nil
}
