package scalarindex

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/indexfile"
)

func TestSaveLoadRoundTripNoNulls(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	idx := NewFlatIndex(colbatch.NewColumn([]int64{10, 100, 1000, 1234}), rowIDs(5, 0, 3, 100))

	if err := Save(store, DataFileName, idx, Int64Codec{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(store, DataFileName, Int64Codec{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NumValues() != idx.NumValues() {
		t.Fatalf("NumValues() = %d, want %d", loaded.NumValues(), idx.NumValues())
	}
	for i := range idx.rowIDs {
		if loaded.rowIDs[i] != idx.rowIDs[i] {
			t.Fatalf("rowIDs[%d] = %v, want %v", i, loaded.rowIDs[i], idx.rowIDs[i])
		}
		if loaded.values.Values[i] != idx.values.Values[i] {
			t.Fatalf("values[%d] = %v, want %v", i, loaded.values.Values[i], idx.values.Values[i])
		}
	}
}

func TestSaveLoadRoundTripWithNulls(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	valid := bitset.New(4)
	valid.Set(0).Set(2).Set(3) // row 1 null
	col := colbatch.NewNullableColumn([]int64{10, 0, 1000, 1234}, valid)
	idx := NewFlatIndex(col, rowIDs(5, 0, 3, 100))

	if err := Save(store, DataFileName, idx, Int64Codec{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(store, DataFileName, Int64Codec{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.hasNulls {
		t.Fatal("loaded index should report hasNulls")
	}
	if loaded.values.IsValid(1) {
		t.Fatal("row 1 should remain null after round trip")
	}
	if !loaded.values.IsValid(0) || !loaded.values.IsValid(2) || !loaded.values.IsValid(3) {
		t.Fatal("rows 0, 2, 3 should remain valid after round trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	if _, err := Load(store, DataFileName, Int64Codec{}); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestLoadTruncatedData(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	store.Put(DataFileName, []byte{1, 2})
	if _, err := Load(store, DataFileName, Int64Codec{}); err == nil {
		t.Fatal("expected an error loading truncated data")
	}
}

func TestSaveLoadStringColumn(t *testing.T) {
	store := indexfile.NewMemoryBatchStore()
	idx := NewFlatIndex(colbatch.NewColumn([]string{"alpha", "beta", "gamma"}), rowIDs(0, 1, 2))

	if err := Save(store, DataFileName, idx, StringCodec{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(store, DataFileName, StringCodec{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if loaded.values.Values[i] != want {
			t.Fatalf("values[%d] = %q, want %q", i, loaded.values.Values[i], want)
		}
	}
}

