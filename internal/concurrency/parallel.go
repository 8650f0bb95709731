package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures a bounded worker pool.
type ParallelOptions struct {
	// MaxWorkers is the number of items processed at the same time.
	// 1 keeps the reference sequential order.
	MaxWorkers int
}

func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 4}
}

func (o ParallelOptions) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = DefaultOptions().MaxWorkers
	}
	if w > n {
		w = n
	}
	return w
}

type result[R any] struct {
	index int
	value R
	err   error
}

// ProcessParallel runs itemFunc for every item on at most opts.MaxWorkers goroutines.
// Results keep the input order. Items not started before ctx is done keep their zero value
// and produce no error.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	jobs := make(chan int, len(items))
	results := make(chan result[R], len(items))

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				v, err := itemFunc(ctx, i, items[i])
				results <- result[R]{index: i, value: v, err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, len(items))
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
		}
		out[res.index] = res.value
	}
	return out, errs
}
