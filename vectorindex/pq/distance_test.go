package pq

import (
	"math"
	"testing"

	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

func deterministicCodebook(numCentroids, dimension int) Codebook[float32] {
	flat := make([]float32, numCentroids*dimension)
	for c := 0; c < numCentroids; c++ {
		for d := 0; d < dimension; d++ {
			// A simple, fully deterministic pseudo-random-looking fill.
			flat[c*dimension+d] = float32((c*31+d*7)%23) - 11
		}
	}
	cb, _ := NewCodebook(flat, numCentroids, dimension)
	return cb
}

func naiveL2PerVector(pq *ProductQuantizer[float32], query []float32, code []byte) float32 {
	subDim := pq.Dimension / pq.NumSubVectors
	var total float32
	for sub := 0; sub < pq.NumSubVectors; sub++ {
		centroids := pq.Centroids(sub)
		c := int(code[sub])
		centroid := centroids[c*subDim : (c+1)*subDim]
		querySub := query[sub*subDim : (sub+1)*subDim]
		for i := range querySub {
			d := float64(querySub[i]) - float64(centroid[i])
			total += float32(d * d)
		}
	}
	return total
}

func TestComputeDistancesL2Agreement(t *testing.T) {
	const dim = 16
	const numSubVectors = 4
	const numCentroids = 6
	const total = 5

	cb := deterministicCodebook(numCentroids, dim)
	pqz := &ProductQuantizer[float32]{NumSubVectors: numSubVectors, NumBits: 8, Dimension: dim, Codebook: cb, DistanceType: disttype.L2}

	query := make([]float32, dim)
	for i := range query {
		query[i] = float32(i) * 0.3
	}

	// Build total vectors' worth of row-major 8-bit codes (one byte per
	// sub-vector), cycling through centroid indices.
	rowMajor := make([]byte, total*numSubVectors)
	expectedPerVector := make([][]byte, total)
	for n := 0; n < total; n++ {
		code := make([]byte, numSubVectors)
		for sub := 0; sub < numSubVectors; sub++ {
			code[sub] = byte((n*numSubVectors + sub) % numCentroids)
		}
		expectedPerVector[n] = code
		copy(rowMajor[n*numSubVectors:(n+1)*numSubVectors], code)
	}
	transposed := TransposeCodes(rowMajor, total, numSubVectors)

	distances, err := pqz.ComputeDistances(query, transposed, total)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}

	for n := 0; n < total; n++ {
		expected := naiveL2PerVector(pqz, query, expectedPerVector[n])
		if math.Abs(float64(distances[n]-expected)) > 1e-4 {
			t.Fatalf("vector %d: distance = %v, want %v (naive)", n, distances[n], expected)
		}
	}
}

func TestComputeDistancesDotAppliesBias(t *testing.T) {
	const dim = 8
	const numSubVectors = 2
	const numCentroids = 3
	const total = 2

	cb := deterministicCodebook(numCentroids, dim)
	pqz := &ProductQuantizer[float32]{NumSubVectors: numSubVectors, NumBits: 8, Dimension: dim, Codebook: cb, DistanceType: disttype.Dot}

	query := make([]float32, dim)
	for i := range query {
		query[i] = float32(i) * 0.1
	}
	rowMajor := []byte{0, 1, 2, 0}
	transposed := TransposeCodes(rowMajor, total, numSubVectors)

	distances, err := pqz.ComputeDistances(query, transposed, total)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if len(distances) != total {
		t.Fatalf("len(distances) = %d, want %d", len(distances), total)
	}
	// Each table entry is 1 - dot_i; subtracting num_sub_vectors-1 leaves
	// 1 - (total dot product over all sub-vectors).
	subDim := dim / numSubVectors
	for n := 0; n < total; n++ {
		var dot float64
		for sub := 0; sub < numSubVectors; sub++ {
			centroid := cb.Centroid(int(rowMajor[n*numSubVectors+sub]))
			for i := sub * subDim; i < (sub+1)*subDim; i++ {
				dot += float64(query[i]) * float64(centroid[i])
			}
		}
		if want := 1 - dot; math.Abs(float64(distances[n])-want) > 1e-4 {
			t.Fatalf("vector %d: distance = %v, want %v (1 - dot)", n, distances[n], want)
		}
	}
}

func TestComputeDistancesEmptyCodes(t *testing.T) {
	cb := deterministicCodebook(2, 4)
	pqz := &ProductQuantizer[float32]{NumSubVectors: 2, NumBits: 8, Dimension: 4, Codebook: cb, DistanceType: disttype.L2}
	distances, err := pqz.ComputeDistances([]float32{1, 2, 3, 4}, nil, 0)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if len(distances) != 0 {
		t.Fatalf("len(distances) = %d, want 0", len(distances))
	}
}

func TestTransposeCodesRoundTrip(t *testing.T) {
	rowMajor := []byte{1, 2, 3, 4, 5, 6} // 3 vectors, width 2
	transposed := TransposeCodes(rowMajor, 3, 2)
	want := []byte{1, 3, 5, 2, 4, 6}
	for i, v := range want {
		if transposed[i] != v {
			t.Fatalf("TransposeCodes = %v, want %v", transposed, want)
		}
	}
	// Transposing back (2 rows of width 3) restores the row-major layout.
	back := TransposeCodes(transposed, 2, 3)
	for i, v := range rowMajor {
		if back[i] != v {
			t.Fatalf("TransposeCodes(TransposeCodes(x)) = %v, want %v", back, rowMajor)
		}
	}
}
