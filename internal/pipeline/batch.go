package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is how many calls run concurrently per batch.
const DefaultBatchSize = 10

// runBatches runs work over items in fixed-size batches. Items within a
// batch run concurrently and the next batch starts once every item of the
// current one has settled. settle is called once per item, in completion
// order, never concurrently. Only ctx cancellation between batches stops
// the run early.
func runBatches[In, Out any](
	ctx context.Context,
	items []In,
	size int,
	work func(ctx context.Context, item In) (Out, error),
	settle func(idx int, out Out, err error),
) error {
	if size < 1 {
		size = DefaultBatchSize
	}

	var mu sync.Mutex
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "pipeline: run cancelled")
		}
		end := min(start+size, len(items))

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(end - start)

		for i := start; i < end; i++ {
			g.Go(func() error {
				out, err := safeWork(gCtx, items[i], work)

				mu.Lock()
				settle(i, out, err)
				mu.Unlock()
				return nil
			})
		}

		_ = g.Wait()
	}
	return nil
}

// safeWork turns a panic in work into an error so one bad record cannot
// take down its batch.
func safeWork[In, Out any](ctx context.Context, item In, work func(context.Context, In) (Out, error)) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("panic: %v", r)
		}
	}()
	return work(ctx, item)
}
