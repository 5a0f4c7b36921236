// Package pq implements product quantization: learning/holding a codebook,
// encoding vectors to compact byte codes, and computing bulk distances from
// a query to a block of codes via precomputed lookup tables, grounded on
// original_source/rust/lance-index/src/vector/pq.rs.
package pq

import "github.com/lancedb/lance-index-core/internal/idxerrors"

// Float is the element type constraint a Codebook and the distance kernels
// are generic over. Float16 vectors are decoded to float32 at the
// serialization boundary (serialize.go) before reaching this generic code,
// since arithmetic over x448/float16.Float16 is not expressible through
// ordinary operators the way it is for the native float kinds.
type Float interface {
	~float32 | ~float64
}

// Codebook holds num_centroids centroids of width dimension, flattened
// row-major as [num_centroids, dimension] (spec.md §4.2).
type Codebook[T Float] struct {
	Dimension    int
	NumCentroids int
	Flat         []T
}

// NewCodebook builds a Codebook from row-major flat data. len(flat) must
// equal numCentroids*dimension.
func NewCodebook[T Float](flat []T, numCentroids, dimension int) (Codebook[T], error) {
	if dimension <= 0 {
		return Codebook[T]{}, idxerrors.NewInvalidInput("pq: codebook dimension must be positive, got %d", dimension)
	}
	if len(flat) != numCentroids*dimension {
		return Codebook[T]{}, idxerrors.NewInvalidInput(
			"pq: codebook data length %d does not match num_centroids*dimension = %d*%d",
			len(flat), numCentroids, dimension)
	}
	return Codebook[T]{Dimension: dimension, NumCentroids: numCentroids, Flat: flat}, nil
}

// Centroid returns the c-th centroid, a slice of length Dimension.
func (cb Codebook[T]) Centroid(c int) []T {
	return cb.Flat[c*cb.Dimension : (c+1)*cb.Dimension]
}

// SubVectorCentroids gathers, for sub-vector subIdx of numSubVectors, every
// centroid's sub-vector slice into one contiguous buffer of length
// NumCentroids*subDim -- the accessor the k-means retrainer and the
// distance-table builders both read from (spec.md §4.2 "centroid
// accessor"). Centroid c's sub-vector subIdx lives at
// Flat[c*Dimension+subIdx*subDim : c*Dimension+(subIdx+1)*subDim]; this is
// not contiguous across centroids, so the result is copied rather than
// sliced.
func (cb Codebook[T]) SubVectorCentroids(numSubVectors, subIdx int) []T {
	subDim := cb.Dimension / numSubVectors
	out := make([]T, cb.NumCentroids*subDim)
	for c := 0; c < cb.NumCentroids; c++ {
		src := cb.Flat[c*cb.Dimension+subIdx*subDim : c*cb.Dimension+(subIdx+1)*subDim]
		copy(out[c*subDim:(c+1)*subDim], src)
	}
	return out
}
