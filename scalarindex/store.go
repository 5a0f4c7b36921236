package scalarindex

import (
	"cmp"
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/indexfile"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/rowid"
)

// DataFileName is the canonical name a flat index's serialized batch is
// stored under within an index's BatchStore (spec.md §6).
const DataFileName = "data.lance"

// wire layout: uint32 numRows | uint8 hasNulls | [uint32 bitmapLen |
// validity bitmap bytes, if hasNulls] | uint32 valuesLen | values bytes |
// row ids, numRows*uint64 LE.

// Save serializes idx's values (via codec) and row IDs and writes them to
// store under name.
func Save[T cmp.Ordered](store indexfile.BatchStore, name string, idx *FlatIndex[T], codec Codec[T]) error {
	valuesBytes, err := codec.Encode(idx.values.Values)
	if err != nil {
		return idxerrors.WrapInvalidInput(err, "scalarindex: encode values column")
	}

	n := len(idx.rowIDs)
	hasNulls := idx.values.Valid != nil

	var bitmapBytes []byte
	if hasNulls {
		bitmapBytes = make([]byte, (n+7)/8)
		for i := 0; i < n; i++ {
			if idx.values.Valid.Test(uint(i)) {
				bitmapBytes[i/8] |= 1 << uint(i%8)
			}
		}
	}

	buf := make([]byte, 0, 4+1+4+len(bitmapBytes)+4+len(valuesBytes)+8*n)
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], uint32(n))
	buf = append(buf, tmp4[:]...)
	if hasNulls {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	if hasNulls {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(bitmapBytes)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, bitmapBytes...)
	}
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(valuesBytes)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, valuesBytes...)

	for _, id := range idx.rowIDs {
		var idBuf [8]byte
		binary.LittleEndian.PutUint64(idBuf[:], uint64(id))
		buf = append(buf, idBuf[:]...)
	}

	return idxerrors.WrapIndex(store.Put(name, buf), "scalarindex: save")
}

// Load reads a serialized flat index batch from store under name and
// reconstructs a FlatIndex.
func Load[T cmp.Ordered](store indexfile.BatchStore, name string, codec Codec[T]) (*FlatIndex[T], error) {
	data, err := store.Get(name)
	if err != nil {
		return nil, idxerrors.WrapIndex(err, "scalarindex: load")
	}

	off := 0
	readU32 := func(label string) (uint32, error) {
		if off+4 > len(data) {
			return 0, idxerrors.NewInvalidInput("scalarindex: truncated %s", label)
		}
		v := binary.LittleEndian.Uint32(data[off:])
		off += 4
		return v, nil
	}

	n, err := readU32("row count")
	if err != nil {
		return nil, err
	}
	if off+1 > len(data) {
		return nil, idxerrors.NewInvalidInput("scalarindex: truncated has-nulls flag")
	}
	hasNulls := data[off] != 0
	off++

	var valid *bitset.BitSet
	if hasNulls {
		bitmapLen, err := readU32("validity bitmap length")
		if err != nil {
			return nil, err
		}
		if off+int(bitmapLen) > len(data) {
			return nil, idxerrors.NewInvalidInput("scalarindex: truncated validity bitmap")
		}
		bitmapBytes := data[off : off+int(bitmapLen)]
		off += int(bitmapLen)
		valid = bitset.New(uint(n))
		for i := 0; i < int(n); i++ {
			if bitmapBytes[i/8]&(1<<uint(i%8)) != 0 {
				valid.Set(uint(i))
			}
		}
	}

	valuesLen, err := readU32("values length")
	if err != nil {
		return nil, err
	}
	if off+int(valuesLen) > len(data) {
		return nil, idxerrors.NewInvalidInput("scalarindex: truncated values section")
	}
	values, err := codec.Decode(data[off : off+int(valuesLen)])
	if err != nil {
		return nil, idxerrors.WrapInvalidInput(err, "scalarindex: decode values column")
	}
	off += int(valuesLen)

	if off+8*int(n) > len(data) {
		return nil, idxerrors.NewInvalidInput("scalarindex: truncated row id section")
	}
	rowIDs := make([]rowid.ID, n)
	for i := range rowIDs {
		rowIDs[i] = rowid.ID(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}

	col := colbatch.Column[T]{Values: values, Valid: valid}
	return NewFlatIndex(col, rowIDs), nil
}

