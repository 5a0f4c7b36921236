package scalarindex

import (
	"encoding/binary"
	"math"

	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
)

// Codec bridges a FlatIndex[T]'s statically-typed values column to the
// length-prefixed byte encoding store.go persists, since indexfile's
// BatchStore only knows about raw bytes (spec.md §3: the value column's
// element type is a runtime schema property, not something Go's static
// generics can discover for us).
type Codec[T any] interface {
	ElementType() colbatch.ElementType
	Encode(values []T) ([]byte, error)
	Decode(data []byte) ([]T, error)
}

// Int64Codec encodes a column of int64 values as fixed-width little-endian
// 8-byte records.
type Int64Codec struct{}

func (Int64Codec) ElementType() colbatch.ElementType { return colbatch.Int64 }

func (Int64Codec) Encode(values []int64) ([]byte, error) {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return buf, nil
}

func (Int64Codec) Decode(data []byte) ([]int64, error) {
	if len(data)%8 != 0 {
		return nil, idxerrors.NewInvalidInput("int64 column data length %d is not a multiple of 8", len(data))
	}
	values := make([]int64, len(data)/8)
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values, nil
}

// Float64Codec encodes a column of float64 values as fixed-width
// little-endian 8-byte IEEE-754 records.
type Float64Codec struct{}

func (Float64Codec) ElementType() colbatch.ElementType { return colbatch.Float64 }

func (Float64Codec) Encode(values []float64) ([]byte, error) {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf, nil
}

func (Float64Codec) Decode(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, idxerrors.NewInvalidInput("float64 column data length %d is not a multiple of 8", len(data))
	}
	values := make([]float64, len(data)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values, nil
}

// StringCodec encodes a column of strings as a sequence of
// uint32-length-prefixed UTF-8 byte runs.
type StringCodec struct{}

func (StringCodec) ElementType() colbatch.ElementType { return colbatch.String }

func (StringCodec) Encode(values []string) ([]byte, error) {
	size := 0
	for _, v := range values {
		size += 4 + len(v)
	}
	buf := make([]byte, size)
	off := 0
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(v)))
		off += 4
		copy(buf[off:], v)
		off += len(v)
	}
	return buf, nil
}

func (StringCodec) Decode(data []byte) ([]string, error) {
	var values []string
	off := 0
	for off < len(data) {
		if off+4 > len(data) {
			return nil, idxerrors.NewInvalidInput("string column truncated length prefix at offset %d", off)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if off+n > len(data) {
			return nil, idxerrors.NewInvalidInput("string column truncated value at offset %d", off)
		}
		values = append(values, string(data[off:off+n]))
		off += n
	}
	return values, nil
}
