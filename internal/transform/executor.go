package transform

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

var ErrPanic = errors.New("transform: row function panicked")

// TaskFunc evaluates item i.
type TaskFunc func(ctx context.Context, i int) (any, error)

// Executor evaluates n independent tasks and returns their results ordered
// by index, whatever order they complete in.
type Executor interface {
	Map(ctx context.Context, n int, fn TaskFunc) ([]any, error)
}

// NewExecutor returns Sequential for a single worker and a Pool otherwise.
func NewExecutor(workers int) Executor {
	if workers <= 1 {
		return Sequential{}
	}
	return Pool{Workers: workers}
}

// Sequential runs tasks in index order on the calling goroutine.
type Sequential struct{}

func (Sequential) Map(ctx context.Context, n int, fn TaskFunc) ([]any, error) {
	out := make([]any, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := safeCall(ctx, fn, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Pool runs tasks on a fixed number of goroutines fed from an index channel.
// The first failure cancels the remaining work. Goroutines live for one Map
// call.
type Pool struct {
	Workers int
}

func (p Pool) Map(ctx context.Context, n int, fn TaskFunc) ([]any, error) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	out := make([]any, n)
	if n == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	next := make(chan int)

	g.Go(func() error {
		defer close(next)
		for i := 0; i < n; i++ {
			select {
			case next <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range next {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := safeCall(gctx, fn, i)
				if err != nil {
					return err
				}
				// each index is owned by exactly one worker
				out[i] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func safeCall(ctx context.Context, fn TaskFunc, i int) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	return fn(ctx, i)
}
