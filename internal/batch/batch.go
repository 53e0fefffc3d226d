// Package batch runs independent sub-tasks with a concurrency ceiling,
// preserving input order in the aggregated results.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel sub-tasks when no limit is given.
const DefaultConcurrency = 5

// Options configures a batch run.
type Options struct {
	// Concurrency is the chunk size: that many items run in parallel,
	// and chunk N+1 does not start until chunk N has fully settled.
	Concurrency int
	// OnChunkDone is invoked after each chunk with the cumulative number
	// of processed items and the total item count.
	OnChunkDone func(processed, total int)
}

// Run partitions items into consecutive chunks of Options.Concurrency
// and processes each chunk's items concurrently. Results preserve input
// order: result[i] corresponds to processor(items[i]) regardless of
// completion order. A single item's failure fails the whole batch;
// processors that need partial-failure tolerance must catch and
// substitute a degraded result themselves.
func Run[T, R any](ctx context.Context, items []T, processor func(context.Context, T) (R, error), opts Options) ([]R, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]R, len(items))
	total := len(items)

	for start := 0; start < total; start += concurrency {
		end := start + concurrency
		if end > total {
			end = total
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				result, err := processor(gCtx, items[i])
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if opts.OnChunkDone != nil {
			opts.OnChunkDone(end, total)
		}
	}

	return results, nil
}
