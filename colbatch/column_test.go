package colbatch

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
)

func TestColumnNoNulls(t *testing.T) {
	c := NewColumn([]int64{10, 100, 1000, 1234})
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}
	if c.HasNulls() {
		t.Fatal("HasNulls() should be false with no validity bitmap")
	}
	for i := 0; i < c.Len(); i++ {
		if !c.IsValid(i) {
			t.Fatalf("IsValid(%d) = false, want true", i)
		}
	}
}

func TestColumnWithNulls(t *testing.T) {
	valid := bitset.New(4)
	valid.Set(0).Set(2).Set(3) // row 1 is null
	c := NewNullableColumn([]int64{10, 0, 1000, 1234}, valid)

	if !c.HasNulls() {
		t.Fatal("HasNulls() should be true")
	}
	if c.IsValid(1) {
		t.Fatal("row 1 should be null")
	}
	if !c.IsValid(0) || !c.IsValid(2) || !c.IsValid(3) {
		t.Fatal("rows 0, 2, 3 should be valid")
	}
	if !c.IsNull(1) {
		t.Fatal("IsNull(1) should be true")
	}
}

func TestColumnTake(t *testing.T) {
	valid := bitset.New(4)
	valid.Set(0).Set(2).Set(3)
	c := NewNullableColumn([]int64{10, 0, 1000, 1234}, valid)

	taken := c.Take([]int{3, 0})
	if taken.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", taken.Len())
	}
	if taken.Values[0] != 1234 || taken.Values[1] != 10 {
		t.Fatalf("Values = %v, want [1234 10]", taken.Values)
	}
	if !taken.IsValid(0) || !taken.IsValid(1) {
		t.Fatal("taken rows should preserve validity")
	}
}

func TestColumnTakePreservesNullGather(t *testing.T) {
	valid := bitset.New(4)
	valid.Set(0).Set(2).Set(3) // row 1 null
	c := NewNullableColumn([]int64{10, 0, 1000, 1234}, valid)

	taken := c.Take([]int{1, 0})
	if taken.IsValid(0) {
		t.Fatal("gathered null row should remain null")
	}
	if !taken.IsValid(1) {
		t.Fatal("gathered valid row should remain valid")
	}
}

func TestFixedSizeListColumn(t *testing.T) {
	flat := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	col := NewFixedSizeListColumn(flat, 4)

	if col.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", col.NumRows())
	}
	row0 := col.Row(0)
	if len(row0) != 4 || row0[0] != 1 || row0[3] != 4 {
		t.Fatalf("Row(0) = %v", row0)
	}
	row1 := col.Row(1)
	if row1[0] != 5 || row1[3] != 8 {
		t.Fatalf("Row(1) = %v", row1)
	}
}
