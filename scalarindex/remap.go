package scalarindex

import "github.com/lancedb/lance-index-core/rowid"

// RemapMapping describes how row IDs move after a compaction. A present key
// mapped to nil means the row was deleted and must be dropped from the
// index. An absent key means the row ID is unchanged (identity map). This
// mirrors original_source/rust/lance-index/src/scalar/flat.rs's
// remap_batch, whose mapping lookup is
// `mapping.get(old_id).copied().unwrap_or(Some(old_id))`.
type RemapMapping map[rowid.ID]*rowid.ID

// Remap rewrites the index's row IDs according to mapping, dropping any row
// whose mapped ID is nil and gathering the surviving values in place. It
// returns a new FlatIndex; the receiver is left unmodified.
func (idx *FlatIndex[T]) Remap(mapping RemapMapping) *FlatIndex[T] {
	keep := make([]int, 0, len(idx.rowIDs))
	newIDs := make([]rowid.ID, 0, len(idx.rowIDs))

	for i, old := range idx.rowIDs {
		mapped, present := mapping[old]
		var next rowid.ID
		var dropped bool
		if !present {
			next = old
		} else if mapped == nil {
			dropped = true
		} else {
			next = *mapped
		}
		if dropped {
			continue
		}
		keep = append(keep, i)
		newIDs = append(newIDs, next)
	}

	taken := idx.values.Take(keep)
	return &FlatIndex[T]{
		values:   taken,
		rowIDs:   newIDs,
		hasNulls: taken.HasNulls(),
	}
}
