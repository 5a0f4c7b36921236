package scalarindex

import (
	"cmp"
	"sort"

	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/log"
	"github.com/lancedb/lance-index-core/metrics"
	"github.com/lancedb/lance-index-core/rowid"
)

var searchLogger = log.Default().Module("scalarindex")

// ResultKind distinguishes a search result that lists exactly the matching
// rows from one that only narrows candidates (spec.md §4.1: flat indexes
// always answer exactly, but the type exists so callers composing a flat
// index into a larger index tree don't special-case it).
type ResultKind int

const (
	Exact ResultKind = iota
	Approximate
)

// SearchResult is the outcome of FlatIndex.Search: a set of row IDs tagged
// with whether it is the exact answer or a superset needing a recheck.
type SearchResult struct {
	Kind   ResultKind
	RowIDs rowid.Set
}

// FlatIndex is the flat scalar index of spec.md §4.1: a (values, row_ids)
// batch held entirely in memory, answering SARGable predicates with basic
// compare-and-filter kernels the way flat.rs uses arrow-rs compute
// functions. T is the column's element type; a caller that doesn't know T
// statically should go through a Codec (see store.go) to decode into one.
type FlatIndex[T cmp.Ordered] struct {
	values   colbatch.Column[T]
	rowIDs   []rowid.ID
	hasNulls bool
}

// NewFlatIndex builds a FlatIndex directly from parallel values/rowIDs
// columns, the in-memory construction path used when training a sub-index
// or when a caller already has decoded columns in hand.
func NewFlatIndex[T cmp.Ordered](values colbatch.Column[T], rowIDs []rowid.ID) *FlatIndex[T] {
	return &FlatIndex[T]{
		values:   values,
		rowIDs:   rowIDs,
		hasNulls: values.HasNulls(),
	}
}

// NumValues returns the number of rows backing the index.
func (idx *FlatIndex[T]) NumValues() int { return len(idx.rowIDs) }

// CanAnswerExact always returns true: every query this index accepts, it
// answers with the exact matching row set, never a superset.
func (idx *FlatIndex[T]) CanAnswerExact() bool { return true }

// IncludedFragments returns the sorted, deduplicated set of fragment IDs
// appearing in the index's row IDs (spec.md glossary: upper 32 bits of a
// row ID are the fragment ID), mirroring flat.rs's calculate_included_frags.
func (idx *FlatIndex[T]) IncludedFragments() []uint32 {
	seen := make(map[uint32]struct{})
	for _, id := range idx.rowIDs {
		seen[id.Fragment()] = struct{}{}
	}
	frags := make([]uint32, 0, len(seen))
	for f := range seen {
		frags = append(frags, f)
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i] < frags[j] })
	return frags
}

// isNotNullMask returns a boolean mask with true wherever the value is
// non-null, for ANDing into range-query predicates (spec.md §4.1: "any
// range query with has_nulls = true must AND the result with
// is_not_null(values) before filtering").
func (idx *FlatIndex[T]) isNotNullMask() []bool {
	mask := make([]bool, idx.values.Len())
	for i := range mask {
		mask[i] = idx.values.IsValid(i)
	}
	return mask
}

func (idx *FlatIndex[T]) isNullMask() []bool {
	mask := idx.isNotNullMask()
	for i := range mask {
		mask[i] = !mask[i]
	}
	return mask
}

func (idx *FlatIndex[T]) gather(mask []bool) rowid.Set {
	ids := make([]rowid.ID, 0, len(mask))
	for i, m := range mask {
		if m {
			ids = append(ids, idx.rowIDs[i])
		}
	}
	return rowid.NewSet(ids)
}

// Search evaluates query against the index and returns the matching row
// IDs, following the predicate policies of spec.md §4.1 exactly:
//
//   - Equals matches non-null values equal to Value.
//   - IsNull matches null rows.
//   - IsIn matches membership in Values; if HasNull is set and the column
//     has nulls, the null mask is OR'd in.
//   - RangeQuery with both bounds unbounded is a contract violation and
//     fails loudly rather than matching everything. Otherwise the
//     predicate is AND'd with is_not_null when the column has nulls.
//   - FullTextSearch is always rejected: a flat scalar index has no text
//     index to consult.
func (idx *FlatIndex[T]) Search(query Query) (SearchResult, error) {
	metrics.DefaultRegistry.Counter("flat_search_total").Inc()
	result, err := idx.search(query)
	if err != nil {
		searchLogger.Debug("search rejected", "error", err)
	}
	return result, err
}

func (idx *FlatIndex[T]) search(query Query) (SearchResult, error) {
	switch q := query.(type) {
	case Equals[T]:
		mask := make([]bool, idx.values.Len())
		for i := range mask {
			mask[i] = idx.values.IsValid(i) && idx.values.Values[i] == q.Value
		}
		return SearchResult{Kind: Exact, RowIDs: idx.gather(mask)}, nil

	case IsNull:
		return SearchResult{Kind: Exact, RowIDs: idx.gather(idx.isNullMask())}, nil

	case IsIn[T]:
		set := make(map[T]struct{}, len(q.Values))
		for _, v := range q.Values {
			set[v] = struct{}{}
		}
		mask := make([]bool, idx.values.Len())
		for i := range mask {
			if !idx.values.IsValid(i) {
				continue
			}
			if _, ok := set[idx.values.Values[i]]; ok {
				mask[i] = true
			}
		}
		if q.HasNull && idx.hasNulls {
			nulls := idx.isNullMask()
			for i := range mask {
				mask[i] = mask[i] || nulls[i]
			}
		}
		return SearchResult{Kind: Exact, RowIDs: idx.gather(mask)}, nil

	case RangeQuery[T]:
		if q.Lower.Kind == Unbounded && q.Upper.Kind == Unbounded {
			return SearchResult{}, idxerrors.NewInvalidInput("range query received with no upper or lower bound")
		}
		mask := make([]bool, idx.values.Len())
		for i := range mask {
			if !idx.values.IsValid(i) {
				continue
			}
			v := idx.values.Values[i]
			if !boundAllowsLower(q.Lower, v) {
				continue
			}
			if !boundAllowsUpper(q.Upper, v) {
				continue
			}
			mask[i] = true
		}
		if idx.hasNulls {
			notNull := idx.isNotNullMask()
			for i := range mask {
				mask[i] = mask[i] && notNull[i]
			}
		}
		return SearchResult{Kind: Exact, RowIDs: idx.gather(mask)}, nil

	case FullTextSearch:
		return SearchResult{}, idxerrors.NewInvalidInput("flat scalar index cannot answer full text search queries")

	default:
		return SearchResult{}, idxerrors.NewInvalidInput("flat scalar index received an unsupported query type")
	}
}

func boundAllowsLower[T cmp.Ordered](b Bound[T], v T) bool {
	switch b.Kind {
	case Unbounded:
		return true
	case Included:
		return v >= b.Value
	case Excluded:
		return v > b.Value
	default:
		return false
	}
}

func boundAllowsUpper[T cmp.Ordered](b Bound[T], v T) bool {
	switch b.Kind {
	case Unbounded:
		return true
	case Included:
		return v <= b.Value
	case Excluded:
		return v < b.Value
	default:
		return false
	}
}
