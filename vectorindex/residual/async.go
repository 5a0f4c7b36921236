package residual

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

// transformSemaphore bounds concurrent TransformAsync calls, sharing the
// CPU-bound worker budget the way scalarindex.searchSemaphore and
// pq.distanceSemaphore do (spec.md §5).
var transformSemaphore = semaphore.NewWeighted(8)

// TransformAsync runs Transform on a goroutine once a slot of
// transformSemaphore is free. ctx is honored only while waiting for the
// slot: if it is canceled first, ctx.Err() is returned; once Transform has
// started, TransformAsync waits for it to finish.
func TransformAsync[T Float](ctx context.Context, batch VectorBatch[T], partitionIDs []uint32, centroids Centroids[T], hasPQCodes bool, distanceType disttype.DistanceType, assigner PartitionAssigner[T]) (VectorBatch[T], []uint32, error) {
	if err := transformSemaphore.Acquire(ctx, 1); err != nil {
		return VectorBatch[T]{}, nil, err
	}
	defer transformSemaphore.Release(1)

	g, _ := errgroup.WithContext(ctx)
	var outBatch VectorBatch[T]
	var outIDs []uint32
	g.Go(func() error {
		b, ids, err := Transform(batch, partitionIDs, centroids, hasPQCodes, distanceType, assigner)
		if err != nil {
			return err
		}
		outBatch, outIDs = b, ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return VectorBatch[T]{}, nil, err
	}
	return outBatch, outIDs, nil
}
