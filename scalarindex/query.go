// Package scalarindex implements the flat scalar index: an in-memory
// (values, row_ids) batch answering SARGable predicates (spec.md §4.1),
// grounded on original_source/rust/lance-index/src/scalar/flat.rs and the
// sibling SargableQuery enum it matches against.
package scalarindex

// Query is the SARGable predicate sum-type a flat index can be asked to
// answer. It is implemented by Equals, IsNull, IsIn, RangeQuery, and
// FullTextSearch; the marker method keeps the set closed to this package's
// types the way a Rust enum would.
type Query interface {
	isQuery()
}

// Equals matches rows whose value equals Value exactly. A caller that wants
// to match nulls should use IsNull instead; Search degrades Equals into an
// IsNull check automatically only when the caller constructs Equals with a
// pointer-typed wrapper indicating null, which this package does not expose
// -- use IsNull directly (spec.md §4.1: "Equals(null) degenerates to
// IsNull").
type Equals[T comparable] struct {
	Value T
}

func (Equals[T]) isQuery() {}

// IsNull matches rows whose value is null.
type IsNull struct{}

func (IsNull) isQuery() {}

// IsIn matches rows whose value is a member of Values. If Values contains a
// representation of null (HasNull set) and the column itself has nulls, the
// result is OR'd with the column's null mask, matching Arrow's in_list
// semantics plus the explicit null join flat.rs performs by hand.
type IsIn[T comparable] struct {
	Values  []T
	HasNull bool
}

func (IsIn[T]) isQuery() {}

// BoundKind classifies one side of a RangeQuery.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one side (lower or upper) of a range predicate.
type Bound[T any] struct {
	Kind  BoundKind
	Value T
}

// UnboundedBound returns the unbounded side of a range.
func UnboundedBound[T any]() Bound[T] { return Bound[T]{Kind: Unbounded} }

// IncludedBound returns an inclusive bound at v.
func IncludedBound[T any](v T) Bound[T] { return Bound[T]{Kind: Included, Value: v} }

// ExcludedBound returns an exclusive bound at v.
func ExcludedBound[T any](v T) Bound[T] { return Bound[T]{Kind: Excluded, Value: v} }

// RangeQuery matches rows whose value falls between Lower and Upper. Both
// bounds unbounded is a contract violation the flat index rejects loudly
// rather than silently treating as "match everything" (spec.md §4.1).
type RangeQuery[T any] struct {
	Lower Bound[T]
	Upper Bound[T]
}

func (RangeQuery[T]) isQuery() {}

// FullTextSearch is accepted into the Query sum-type for symmetry with the
// original query enum, but a flat scalar index can never answer it --
// Search always rejects it with an InvalidInput error.
type FullTextSearch struct {
	Text string
}

func (FullTextSearch) isQuery() {}
