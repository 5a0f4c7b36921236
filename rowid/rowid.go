// Package rowid defines the 64-bit row identifier shared by every index in
// this repository: the join key between an index and the base table it
// indexes. A row ID packs a fragment ID (which horizontal partition of the
// table a row lives in) into its upper 32 bits and a local offset within
// that fragment into its lower 32 bits, matching the split used by
// original_source/rust/lance-index/src/scalar/flat.rs.
package rowid

import "sort"

// ID is an opaque 64-bit row identifier: (fragment_id, local_offset).
// It is stable across compaction moves only when the table's
// move-stable-row-IDs feature flag is set (see tableformat/featureflags).
type ID uint64

const fragmentShift = 32

// New packs a fragment ID and a local offset into a row ID.
func New(fragmentID, localOffset uint32) ID {
	return ID(uint64(fragmentID)<<fragmentShift | uint64(localOffset))
}

// Fragment extracts the fragment ID (the upper 32 bits) from a row ID.
func (id ID) Fragment() uint32 {
	return uint32(uint64(id) >> fragmentShift)
}

// LocalOffset extracts the ordinal within the fragment (the lower 32 bits).
func (id ID) LocalOffset() uint32 {
	return uint32(uint64(id))
}

// Set is a sorted, deduplicated collection of row IDs. The flat index's
// search result and remap machinery both produce a Set: search results are
// order-free (spec: "the output row-ID set is order-free (it is a set)"),
// and a sorted slice gives callers a stable, comparable representation
// without pulling in a general-purpose ordered-set dependency.
type Set struct {
	ids []ID
}

// NewSet builds a Set from an unsorted, possibly-duplicated slice of IDs.
func NewSet(ids []ID) Set {
	cp := append([]ID(nil), ids...)
	sortIDs(cp)
	cp = dedupeSorted(cp)
	return Set{ids: cp}
}

// Len returns the number of distinct row IDs in the set.
func (s Set) Len() int { return len(s.ids) }

// Slice returns the sorted, deduplicated row IDs as a plain slice. The
// caller must not mutate the returned slice.
func (s Set) Slice() []ID { return s.ids }

// Contains reports whether id is a member of the set.
func (s Set) Contains(id ID) bool {
	lo, hi := 0, len(s.ids)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s.ids[mid] < id:
			lo = mid + 1
		case s.ids[mid] > id:
			hi = mid
		default:
			return true
		}
	}
	return false
}

// Equal reports whether s and other contain exactly the same row IDs.
func (s Set) Equal(other Set) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != other.ids[i] {
			return false
		}
	}
	return true
}

func sortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func dedupeSorted(ids []ID) []ID {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
