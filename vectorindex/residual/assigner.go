package residual

import "github.com/lancedb/lance-index-core/vectorindex/disttype"

// PartitionAssigner is the external k-means partition assigner collaborator
// (spec.md §1 "IVF partitioner... out of scope"): given a vector batch, it
// returns the index of each vector's nearest coarse centroid. Transform
// calls this only when the batch arrives without a partition-ID column.
type PartitionAssigner[T any] interface {
	Assign(vectors VectorBatch[T], distanceType disttype.DistanceType) ([]uint32, error)
}
