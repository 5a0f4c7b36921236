package colbatch

import "github.com/bits-and-blooms/bitset"

// Column is an ordered, optionally-nullable vector of values of type T.
// Validity follows the Arrow convention: a set bit in Valid means the value
// at that position is non-null. A nil Valid bitmap means the column has no
// nulls at all (every position implicitly valid), which is the common case
// for freshly-materialized row-ID columns.
type Column[T any] struct {
	Values []T
	Valid  *bitset.BitSet
}

// NewColumn builds a Column with no nulls.
func NewColumn[T any](values []T) Column[T] {
	return Column[T]{Values: values}
}

// NewNullableColumn builds a Column with an explicit validity bitmap. valid
// must have at least len(values) bits; bit i clear means Values[i] is null.
func NewNullableColumn[T any](values []T, valid *bitset.BitSet) Column[T] {
	return Column[T]{Values: values, Valid: valid}
}

// Len returns the number of rows in the column.
func (c Column[T]) Len() int { return len(c.Values) }

// IsValid reports whether the value at row i is non-null.
func (c Column[T]) IsValid(i int) bool {
	if c.Valid == nil {
		return true
	}
	return c.Valid.Test(uint(i))
}

// IsNull reports whether the value at row i is null.
func (c Column[T]) IsNull(i int) bool { return !c.IsValid(i) }

// HasNulls reports whether any row in the column is null. This backs the
// value batch's cached has_nulls bit (spec.md §3).
func (c Column[T]) HasNulls() bool {
	if c.Valid == nil {
		return false
	}
	for i := 0; i < len(c.Values); i++ {
		if !c.Valid.Test(uint(i)) {
			return true
		}
	}
	return false
}

// Take gathers the rows at the given indices into a new Column, preserving
// validity. This is the kernel the flat index's remap path uses to filter a
// value batch down to surviving rows (spec.md §4.1 "take-gathering").
func (c Column[T]) Take(indices []int) Column[T] {
	values := make([]T, len(indices))
	var valid *bitset.BitSet
	if c.Valid != nil {
		valid = bitset.New(uint(len(indices)))
	}
	for dst, src := range indices {
		values[dst] = c.Values[src]
		if valid != nil && c.Valid.Test(uint(src)) {
			valid.Set(uint(dst))
		}
	}
	return Column[T]{Values: values, Valid: valid}
}
