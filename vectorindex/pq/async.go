package pq

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// distanceSemaphore bounds concurrent ComputeDistancesAsync calls, sharing
// the CPU-bound worker budget across the indexing subsystem the way
// scalarindex.searchSemaphore does for flat index search (spec.md §5).
var distanceSemaphore = semaphore.NewWeighted(8)

// ComputeDistancesAsync runs ComputeDistances on a goroutine once a slot of
// distanceSemaphore is free. ctx is honored only while waiting for the slot:
// if it is canceled first, ctx.Err() is returned; once ComputeDistances has
// started, ComputeDistancesAsync waits for it to finish.
func ComputeDistancesAsync[T Float](ctx context.Context, pq *ProductQuantizer[T], query []T, transposedCodes []byte, total int) ([]float32, error) {
	if err := distanceSemaphore.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer distanceSemaphore.Release(1)

	g, _ := errgroup.WithContext(ctx)
	var result []float32
	g.Go(func() error {
		res, err := pq.ComputeDistances(query, transposedCodes, total)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
