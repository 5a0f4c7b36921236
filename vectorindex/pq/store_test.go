package pq

import (
	"testing"

	"github.com/lancedb/lance-index-core/indexfile"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

func TestSaveLoadF32RoundTrip(t *testing.T) {
	cb, err := NewCodebook([]float32{0, 1, 2, 3, 4, 5, 6, 7}, 2, 4)
	if err != nil {
		t.Fatalf("NewCodebook: %v", err)
	}
	original := &ProductQuantizer[float32]{NumSubVectors: 2, NumBits: 8, Dimension: 4, Codebook: cb, DistanceType: disttype.L2}

	store := indexfile.NewMemoryBatchStore()
	if err := SaveF32(store, CodebookFileName, original); err != nil {
		t.Fatalf("SaveF32: %v", err)
	}

	loaded, err := LoadF32(store, CodebookFileName, disttype.L2)
	if err != nil {
		t.Fatalf("LoadF32: %v", err)
	}
	if loaded.NumSubVectors != original.NumSubVectors || loaded.NumBits != original.NumBits || loaded.Dimension != original.Dimension {
		t.Fatalf("loaded params = %+v, want matching %+v", loaded, original)
	}
	for i, v := range original.Codebook.Flat {
		if loaded.Codebook.Flat[i] != v {
			t.Fatalf("loaded.Codebook.Flat[%d] = %v, want %v", i, loaded.Codebook.Flat[i], v)
		}
	}
}

func TestLoadF32MissingFile(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	if _, err := LoadF32(store, CodebookFileName, disttype.L2); err == nil {
		t.Fatal("expected an error loading a missing codebook file")
	}
}

func TestSaveLoadF32WithCosineNormalizesOnLoad(t *testing.T) {
	cb, _ := NewCodebook([]float32{0, 0}, 1, 2)
	original := &ProductQuantizer[float32]{NumSubVectors: 1, NumBits: 8, Dimension: 2, Codebook: cb, DistanceType: disttype.Cosine}

	store := indexfile.NewMemoryBatchStore()
	if err := SaveF32(store, CodebookFileName, original); err != nil {
		t.Fatalf("SaveF32: %v", err)
	}
	loaded, err := LoadF32(store, CodebookFileName, disttype.Cosine)
	if err != nil {
		t.Fatalf("LoadF32: %v", err)
	}
	if loaded.DistanceType != disttype.L2 {
		t.Fatalf("DistanceType = %v, want L2", loaded.DistanceType)
	}
}
