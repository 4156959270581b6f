package preprocess

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch runs p over independent images in parallel, at most workers at
// a time (workers <= 0 means GOMAXPROCS). Each run owns its buffers; nothing is
// shared between runs.
//
// Results are returned in input order. The first failure cancels the remaining
// runs and is returned with the index of the offending source.
func ProcessBatch(ctx context.Context, p *Pipeline, sources [][]byte, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		g.Go(func() error {
			res, err := p.Run(gctx, src)
			if err != nil {
				return fmt.Errorf("failed to process image %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
