// Package residual implements the residual transform (spec.md §4.3):
// replacing a batch's vector column with its residual against the vector's
// assigned coarse (IVF) centroid. The IVF partitioner itself — the thing
// that trains the centroid matrix — is an external collaborator out of
// scope here; this package only consumes a centroid matrix and, when the
// partition column is absent, an injected PartitionAssigner.
package residual

import (
	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
)

// ResidualColumn is the fixed name Transform's output vector column is
// advertised under (spec.md §4.3, §6).
const ResidualColumn = "__residual_vector"

// Field describes the output column Transform populates: a
// FixedSizeList<itemType, dimension> named ResidualColumn.
func Field(dimension int, itemType colbatch.ElementType) colbatch.Field {
	return colbatch.FixedSizeListField(ResidualColumn, itemType, dimension, true)
}

// Float is the element-type constraint shared by centroid matrices and
// vector columns that participate in ordinary floating-point arithmetic.
// Float16 vectors are handled separately (TransformF16) since
// x448/float16.Float16 is a uint16 under the hood and isn't directly
// addable; see vectorindex/pq.Float for the identical rationale.
type Float interface {
	~float32 | ~float64
}

// Centroids is the coarse-quantization centroid matrix, row-major
// [num_partitions, dimension] (spec.md §4.3 "Configuration").
type Centroids[T any] struct {
	Dimension     int
	NumPartitions int
	Flat          []T
}

// NewCentroids validates and builds a Centroids matrix.
func NewCentroids[T any](flat []T, numPartitions, dimension int) (Centroids[T], error) {
	if dimension <= 0 {
		return Centroids[T]{}, idxerrors.NewInvalidInput("residual: dimension must be positive, got %d", dimension)
	}
	if len(flat) != numPartitions*dimension {
		return Centroids[T]{}, idxerrors.NewInvalidInput("residual: centroid matrix has %d elements, want %d (%d partitions * %d dimension)", len(flat), numPartitions*dimension, numPartitions, dimension)
	}
	return Centroids[T]{Dimension: dimension, NumPartitions: numPartitions, Flat: flat}, nil
}

// Row returns the partID-th centroid as a slice view.
func (c Centroids[T]) Row(partID uint32) []T {
	return c.Flat[int(partID)*c.Dimension : int(partID+1)*c.Dimension]
}

// VectorBatch is a flat, row-major column of fixed-width vectors (spec.md
// §3 FixedSizeList convention, without the full colbatch machinery since
// residual only ever touches one vector column at a time).
type VectorBatch[T any] struct {
	Dimension int
	Vectors   []T
}

// NumRows returns the number of vectors in the batch.
func (b VectorBatch[T]) NumRows() int {
	if b.Dimension == 0 {
		return 0
	}
	return len(b.Vectors) / b.Dimension
}

// Row returns the i-th vector as a slice view.
func (b VectorBatch[T]) Row(i int) []T {
	return b.Vectors[i*b.Dimension : (i+1)*b.Dimension]
}

func validateShapes(vectorDim, vectorRows, centroidDim, partitionIDsLen int) error {
	if vectorDim != centroidDim {
		return idxerrors.NewInvalidInput("residual: vector dimension %d does not match centroid dimension %d", vectorDim, centroidDim)
	}
	if partitionIDsLen != 0 && partitionIDsLen != vectorRows {
		return idxerrors.NewInvalidInput("residual: partition_ids length %d does not match vector row count %d", partitionIDsLen, vectorRows)
	}
	return nil
}
