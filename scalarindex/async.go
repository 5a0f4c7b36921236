package scalarindex

import (
	"cmp"
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// searchSemaphore bounds how many concurrent Search calls SearchAsync admits
// at once, sharing the CPU-bound worker budget the spec's concurrency model
// describes (spec.md §5) rather than spawning one goroutine per query
// unconditionally.
var searchSemaphore = semaphore.NewWeighted(int64(maxParallelSearches()))

func maxParallelSearches() int {
	// A conservative fixed worker budget; SPEC_FULL.md §5 leaves the exact
	// figure to the embedder, and callers needing a different figure run
	// their own errgroup around Search directly.
	return 8
}

// SearchAsync runs Search on a goroutine once a slot of searchSemaphore is
// free. ctx is honored only while waiting for the slot: if it is canceled
// first, SearchAsync returns ctx.Err(); once Search has started,
// SearchAsync waits for it to finish.
func SearchAsync[T cmp.Ordered](ctx context.Context, idx *FlatIndex[T], query Query) (SearchResult, error) {
	if err := searchSemaphore.Acquire(ctx, 1); err != nil {
		return SearchResult{}, err
	}
	defer searchSemaphore.Release(1)

	g, ctx := errgroup.WithContext(ctx)
	var result SearchResult
	g.Go(func() error {
		res, err := idx.Search(query)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}
