package pq

import (
	"time"

	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/metrics"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

var distanceTableBuildHistogram = metrics.DefaultRegistry.Histogram("pq_distance_table_build_seconds")

// BuildL2DistanceTable builds a [num_sub_vectors, num_centroids] table
// (flattened sub-vector-major) where table[i*numCentroids+c] is the
// squared L2 distance from query's i-th sub-vector to centroid c's i-th
// sub-vector (spec.md §4.2).
func (pq *ProductQuantizer[T]) BuildL2DistanceTable(query []T) ([]float32, error) {
	if len(query) != pq.Dimension {
		return nil, idxerrors.NewInvalidInput("pq: query length %d does not match dimension %d", len(query), pq.Dimension)
	}
	start := time.Now()
	defer func() { distanceTableBuildHistogram.Observe(time.Since(start).Seconds()) }()

	subDim := pq.Dimension / pq.NumSubVectors
	numCentroids := pq.Codebook.NumCentroids
	table := make([]float32, pq.NumSubVectors*numCentroids)

	for sub := 0; sub < pq.NumSubVectors; sub++ {
		centroids := pq.Centroids(sub)
		querySub := query[sub*subDim : (sub+1)*subDim]
		for c := 0; c < numCentroids; c++ {
			centroid := centroids[c*subDim : (c+1)*subDim]
			table[sub*numCentroids+c] = float32(l2Squared(querySub, centroid))
		}
	}
	return table, nil
}

// BuildDotDistanceTable builds the analogous table of biased inner
// products: table[i*numCentroids+c] = 1 - dot(query_i, centroid_c_i). The
// +1 bias keeps entries non-negative for SIMD-friendly accumulation; see
// ComputeDistances for the corresponding de-bias step (spec.md §4.2, §9
// "dot distance bias").
func (pq *ProductQuantizer[T]) BuildDotDistanceTable(query []T) ([]float32, error) {
	if len(query) != pq.Dimension {
		return nil, idxerrors.NewInvalidInput("pq: query length %d does not match dimension %d", len(query), pq.Dimension)
	}
	start := time.Now()
	defer func() { distanceTableBuildHistogram.Observe(time.Since(start).Seconds()) }()

	subDim := pq.Dimension / pq.NumSubVectors
	numCentroids := pq.Codebook.NumCentroids
	table := make([]float32, pq.NumSubVectors*numCentroids)

	for sub := 0; sub < pq.NumSubVectors; sub++ {
		centroids := pq.Centroids(sub)
		querySub := query[sub*subDim : (sub+1)*subDim]
		for c := 0; c < numCentroids; c++ {
			centroid := centroids[c*subDim : (c+1)*subDim]
			table[sub*numCentroids+c] = float32(1 - dotProduct(querySub, centroid))
		}
	}
	return table, nil
}

// ComputeDistances sums table entries across sub-vectors for each code in
// transposedCodes (already laid out sub-vector-major: byte i*total+n holds
// vector n's code, or packed code pair, for sub-vector row i), unpacking
// 4-bit codes on the fly. Returns one score per vector.
func ComputeDistances(table []float32, numBits, numSubVectors, numCentroids, total int, transposedCodes []byte) ([]float32, error) {
	if total == 0 {
		return nil, nil
	}
	out := make([]float32, total)

	switch numBits {
	case 8:
		for n := 0; n < total; n++ {
			var sum float32
			for sub := 0; sub < numSubVectors; sub++ {
				code := transposedCodes[sub*total+n]
				sum += table[sub*numCentroids+int(code)]
			}
			out[n] = sum
		}
	case 4:
		numSubVectorsInByte := numSubVectors / 2
		for n := 0; n < total; n++ {
			var sum float32
			for b := 0; b < numSubVectorsInByte; b++ {
				packed := transposedCodes[b*total+n]
				c0 := packed & 0x0F
				c1 := packed >> 4
				sum += table[(2*b)*numCentroids+int(c0)]
				sum += table[(2*b+1)*numCentroids+int(c1)]
			}
			out[n] = sum
		}
	default:
		return nil, idxerrors.NewIndex("pq: num_bits %d not supported", numBits)
	}
	return out, nil
}

// ComputeDistances scores a transposed code block against query under pq's
// configured distance type, applying the post-processing spec.md §4.2
// prescribes for each distance type.
func (pq *ProductQuantizer[T]) ComputeDistances(query []T, transposedCodes []byte, total int) ([]float32, error) {
	if total == 0 {
		return nil, nil
	}

	switch pq.DistanceType {
	case disttype.L2:
		table, err := pq.BuildL2DistanceTable(query)
		if err != nil {
			return nil, err
		}
		return ComputeDistances(table, pq.NumBits, pq.NumSubVectors, pq.Codebook.NumCentroids, total, transposedCodes)

	case disttype.Cosine:
		// Cosine must have been converted to L2 upstream at the PQ
		// boundary (Build/FromProtoF32/FromProtoF64); reaching here means a caller
		// bypassed that substitution.
		idxerrors.AssertDebug(false, "pq: cosine distance should have been normalized to L2 before reaching ComputeDistances")
		table, err := pq.BuildL2DistanceTable(query)
		if err != nil {
			return nil, err
		}
		distances, err := ComputeDistances(table, pq.NumBits, pq.NumSubVectors, pq.Codebook.NumCentroids, total, transposedCodes)
		if err != nil {
			return nil, err
		}
		for i := range distances {
			distances[i] /= 2
		}
		return distances, nil

	case disttype.Dot:
		table, err := pq.BuildDotDistanceTable(query)
		if err != nil {
			return nil, err
		}
		distances, err := ComputeDistances(table, pq.NumBits, pq.NumSubVectors, pq.Codebook.NumCentroids, total, transposedCodes)
		if err != nil {
			return nil, err
		}
		bias := float32(pq.NumSubVectors - 1)
		for i := range distances {
			distances[i] -= bias
		}
		return distances, nil

	default:
		return nil, idxerrors.NewIndex("pq: distance type %v not supported", pq.DistanceType)
	}
}

// TransposeCodes rearranges row-major packed codes (one CodeDim()-byte row
// per vector) into the sub-vector-major byte stream ComputeDistances
// expects: byte w*total+n holds vector n's w-th code byte.
func TransposeCodes(rowMajor []byte, total, width int) []byte {
	out := make([]byte, len(rowMajor))
	for n := 0; n < total; n++ {
		for w := 0; w < width; w++ {
			out[w*total+n] = rowMajor[n*width+w]
		}
	}
	return out
}
