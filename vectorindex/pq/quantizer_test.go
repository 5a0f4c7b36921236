package pq

import (
	"testing"

	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

// buildTestQuantizer returns an 8-bit, 2-sub-vector, dimension-4 quantizer
// with 3 explicit centroids per sub-vector, chosen so nearest-centroid
// assignment is unambiguous for the test vectors below.
func buildTestQuantizer(t *testing.T) *ProductQuantizer[float32] {
	t.Helper()
	// 3 centroids, dimension 4 (2 sub-vectors of width 2).
	flat := []float32{
		0, 0, 0, 0, // centroid 0
		10, 10, 10, 10, // centroid 1
		20, 20, 20, 20, // centroid 2
	}
	cb, err := NewCodebook(flat, 3, 4)
	if err != nil {
		t.Fatalf("NewCodebook: %v", err)
	}
	return &ProductQuantizer[float32]{
		NumSubVectors: 2,
		NumBits:       8,
		Dimension:     4,
		Codebook:      cb,
		DistanceType:  disttype.L2,
	}
}

func TestQuantizeEightBitNearestCentroid(t *testing.T) {
	pq := buildTestQuantizer(t)
	// vector close to centroid 0 in both sub-vectors.
	vectors := []float32{1, 1, 1, 1}
	codes, err := pq.Quantize(vectors)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(codes) != pq.CodeDim() {
		t.Fatalf("len(codes) = %d, want %d", len(codes), pq.CodeDim())
	}
	if codes[0] != 0 || codes[1] != 0 {
		t.Fatalf("codes = %v, want [0 0]", codes)
	}
}

func TestQuantizeMixedSubVectors(t *testing.T) {
	pq := buildTestQuantizer(t)
	// first sub-vector near centroid 0, second sub-vector near centroid 2.
	vectors := []float32{1, 1, 19, 19}
	codes, err := pq.Quantize(vectors)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if codes[0] != 0 || codes[1] != 2 {
		t.Fatalf("codes = %v, want [0 2]", codes)
	}
}

func TestQuantizeDeterminism(t *testing.T) {
	pq := buildTestQuantizer(t)
	vectors := []float32{1, 1, 1, 1, 9, 9, 9, 9, 21, 21, 21, 21}
	first, err := pq.Quantize(vectors)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	second, err := pq.Quantize(vectors)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Quantize is not deterministic: %v vs %v", first, second)
		}
	}
}

func TestQuantizeFourBitPacking(t *testing.T) {
	// 4 sub-vectors (even, required for num_bits=4), dimension 8, sub_dim 2.
	flat := []float32{
		0, 0, 0, 0, 0, 0, 0, 0, // centroid 0
		10, 10, 10, 10, 10, 10, 10, 10, // centroid 1
	}
	cb, err := NewCodebook(flat, 2, 8)
	if err != nil {
		t.Fatalf("NewCodebook: %v", err)
	}
	pq := &ProductQuantizer[float32]{NumSubVectors: 4, NumBits: 4, Dimension: 8, Codebook: cb, DistanceType: disttype.L2}

	// sub-vectors: [1,1]->0, [1,1]->0, [9,9]->1, [9,9]->1 => codes [0,0,1,1]
	vectors := []float32{1, 1, 1, 1, 9, 9, 9, 9}
	codes, err := pq.Quantize(vectors)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("len(codes) = %d, want 2", len(codes))
	}
	// byte = (code[2k+1]<<4) | code[2k]
	if codes[0] != 0x00 { // (0<<4)|0
		t.Fatalf("codes[0] = %#x, want 0x00", codes[0])
	}
	if codes[1] != 0x11 { // (1<<4)|1
		t.Fatalf("codes[1] = %#x, want 0x11", codes[1])
	}
}

func TestQuantizeRejectsOddSubVectorsForFourBits(t *testing.T) {
	cb, _ := NewCodebook([]float32{0, 0, 0, 0}, 1, 4)
	pq := &ProductQuantizer[float32]{NumSubVectors: 3, NumBits: 4, Dimension: 4, Codebook: cb}
	if _, err := pq.Quantize([]float32{1, 2, 3, 4}); err == nil {
		t.Fatal("expected an error for odd num_sub_vectors with num_bits=4")
	}
}

func TestBuildWithSuppliedCodebook(t *testing.T) {
	codebook := Codebook[float32]{Dimension: 4, NumCentroids: 2, Flat: []float32{0, 0, 0, 0, 1, 1, 1, 1}}
	built, err := Build([]float32{}, 4, disttype.L2, BuildParams[float32]{
		NumSubVectors: 2,
		NumBits:       8,
		Codebook:      &codebook,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Dimension != 4 || built.NumSubVectors != 2 {
		t.Fatalf("Build result = %+v", built)
	}
}

func TestBuildNormalizesCosineToL2(t *testing.T) {
	codebook := Codebook[float32]{Dimension: 2, NumCentroids: 1, Flat: []float32{0, 0}}
	built, err := Build([]float32{}, 2, disttype.Cosine, BuildParams[float32]{NumSubVectors: 1, NumBits: 8, Codebook: &codebook})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.DistanceType != disttype.L2 {
		t.Fatalf("DistanceType = %v, want L2", built.DistanceType)
	}
}

func TestBuildRequiresCodebookOrTrainer(t *testing.T) {
	if _, err := Build([]float32{1, 2, 3, 4}, 4, disttype.L2, BuildParams[float32]{NumSubVectors: 2, NumBits: 8}); err == nil {
		t.Fatal("expected an error when neither codebook nor trainer is supplied")
	}
}

func TestFieldAdvertisesCodeColumnAndWidth(t *testing.T) {
	pq := buildTestQuantizer(t)
	field := pq.Field()
	if field.Name != PQCodeColumn {
		t.Fatalf("field.Name = %q, want %q", field.Name, PQCodeColumn)
	}
	if field.ItemType != colbatch.UInt8 {
		t.Fatalf("field.ItemType = %v, want UInt8", field.ItemType)
	}
	if field.ListWidth != pq.CodeDim() {
		t.Fatalf("field.ListWidth = %d, want CodeDim() %d", field.ListWidth, pq.CodeDim())
	}
	if !field.Nullable {
		t.Fatal("field.Nullable = false, want true")
	}
}
