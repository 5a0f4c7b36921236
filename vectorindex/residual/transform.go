package residual

import (
	"github.com/x448/float16"

	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/metrics"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

var transformRowsCounter = metrics.DefaultRegistry.Counter("residual_transform_rows_total")

// Transform implements the (F32,F32) and (F64,F64) rows of spec.md §4.3's
// type matrix: centroid and vector element types match, no promotion.
//
// If hasPQCodes is true the batch already carries a PQ-code column and is
// returned unchanged (residuals were already computed upstream). Otherwise
// the residual `vector[row] - centroids[part_id[row]]` replaces the vector
// column; partitionIDs is recomputed via assigner when nil.
func Transform[T Float](batch VectorBatch[T], partitionIDs []uint32, centroids Centroids[T], hasPQCodes bool, distanceType disttype.DistanceType, assigner PartitionAssigner[T]) (VectorBatch[T], []uint32, error) {
	if hasPQCodes {
		return batch, partitionIDs, nil
	}
	if err := validateShapes(batch.Dimension, batch.NumRows(), centroids.Dimension, len(partitionIDs)); err != nil {
		return VectorBatch[T]{}, nil, err
	}

	if partitionIDs == nil {
		if assigner == nil {
			return VectorBatch[T]{}, nil, idxerrors.NewInvalidInput("residual: partition_ids absent and no PartitionAssigner supplied")
		}
		ids, err := assigner.Assign(batch, distanceType)
		if err != nil {
			return VectorBatch[T]{}, nil, err
		}
		partitionIDs = ids
	}

	rows := batch.NumRows()
	transformRowsCounter.Add(int64(rows))
	out := make([]T, len(batch.Vectors))
	for row := 0; row < rows; row++ {
		vec := batch.Row(row)
		centroid := centroids.Row(partitionIDs[row])
		dst := out[row*batch.Dimension : (row+1)*batch.Dimension]
		for i := range vec {
			dst[i] = vec[i] - centroid[i]
		}
	}
	return VectorBatch[T]{Dimension: batch.Dimension, Vectors: out}, partitionIDs, nil
}

// TransformInt8ToF32 implements the (F32,Int8) row of spec.md §4.3's type
// matrix: Int8 vectors are promoted to Float32 residuals.
func TransformInt8ToF32(batch VectorBatch[int8], partitionIDs []uint32, centroids Centroids[float32], hasPQCodes bool, distanceType disttype.DistanceType, assigner PartitionAssigner[int8]) (VectorBatch[float32], []uint32, error) {
	if hasPQCodes {
		// The caller already has a PQ-code column; there is no promoted
		// vector batch to hand back, so the int8 batch is reported as-is
		// via a direct float32 copy with no residual subtraction applied.
		out := make([]float32, len(batch.Vectors))
		for i, v := range batch.Vectors {
			out[i] = float32(v)
		}
		return VectorBatch[float32]{Dimension: batch.Dimension, Vectors: out}, partitionIDs, nil
	}
	if err := validateShapes(batch.Dimension, batch.NumRows(), centroids.Dimension, len(partitionIDs)); err != nil {
		return VectorBatch[float32]{}, nil, err
	}

	if partitionIDs == nil {
		if assigner == nil {
			return VectorBatch[float32]{}, nil, idxerrors.NewInvalidInput("residual: partition_ids absent and no PartitionAssigner supplied")
		}
		ids, err := assigner.Assign(batch, distanceType)
		if err != nil {
			return VectorBatch[float32]{}, nil, err
		}
		partitionIDs = ids
	}

	rows := batch.NumRows()
	transformRowsCounter.Add(int64(rows))
	out := make([]float32, len(batch.Vectors))
	for row := 0; row < rows; row++ {
		vec := batch.Row(row)
		centroid := centroids.Row(partitionIDs[row])
		dst := out[row*batch.Dimension : (row+1)*batch.Dimension]
		for i := range vec {
			dst[i] = float32(vec[i]) - centroid[i]
		}
	}
	return VectorBatch[float32]{Dimension: batch.Dimension, Vectors: out}, partitionIDs, nil
}

// TransformF16 implements the (F16,F16) row of spec.md §4.3's type matrix.
// Arithmetic is done in float32 and converted back, matching the boundary
// convention vectorindex/pq.Codebook documents for half-precision data.
func TransformF16(batch VectorBatch[float16.Float16], partitionIDs []uint32, centroids Centroids[float16.Float16], hasPQCodes bool, distanceType disttype.DistanceType, assigner PartitionAssigner[float16.Float16]) (VectorBatch[float16.Float16], []uint32, error) {
	if hasPQCodes {
		return batch, partitionIDs, nil
	}
	if err := validateShapes(batch.Dimension, batch.NumRows(), centroids.Dimension, len(partitionIDs)); err != nil {
		return VectorBatch[float16.Float16]{}, nil, err
	}

	if partitionIDs == nil {
		if assigner == nil {
			return VectorBatch[float16.Float16]{}, nil, idxerrors.NewInvalidInput("residual: partition_ids absent and no PartitionAssigner supplied")
		}
		ids, err := assigner.Assign(batch, distanceType)
		if err != nil {
			return VectorBatch[float16.Float16]{}, nil, err
		}
		partitionIDs = ids
	}

	rows := batch.NumRows()
	transformRowsCounter.Add(int64(rows))
	out := make([]float16.Float16, len(batch.Vectors))
	for row := 0; row < rows; row++ {
		vec := batch.Row(row)
		centroid := centroids.Row(partitionIDs[row])
		dst := out[row*batch.Dimension : (row+1)*batch.Dimension]
		for i := range vec {
			residual := vec[i].Float32() - centroid[i].Float32()
			dst[i] = float16.Fromfloat32(residual)
		}
	}
	return VectorBatch[float16.Float16]{Dimension: batch.Dimension, Vectors: out}, partitionIDs, nil
}
