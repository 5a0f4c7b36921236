package pq

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lancedb/lance-index-core/internal/idxerrors"
)

// TensorDataType tags the element type backing a serialized Tensor. Only
// the floating types PQ codebooks use are represented (spec.md §6).
type TensorDataType int32

const (
	DataTypeFloat16 TensorDataType = 0
	DataTypeFloat32 TensorDataType = 1
	DataTypeFloat64 TensorDataType = 2
)

// Tensor is the wire message backing a serialized codebook: an element
// dtype tag, a shape (here always [num_centroids, dimension]), and the
// flattened little-endian element bytes (spec.md §6).
type Tensor struct {
	DataType TensorDataType
	Shape    []uint64
	Data     []byte
}

const (
	tensorFieldDataType = 1
	tensorFieldShape    = 2
	tensorFieldData     = 3
)

// Marshal encodes t using the wire-stable field layout spec.md §6 defines,
// hand-rolled via protowire rather than generated code since this message
// is small, stable, and the repo has no protoc build step.
func (t Tensor) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, tensorFieldDataType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.DataType))

	if len(t.Shape) > 0 {
		var packed []byte
		for _, s := range t.Shape {
			packed = protowire.AppendVarint(packed, s)
		}
		b = protowire.AppendTag(b, tensorFieldShape, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	b = protowire.AppendTag(b, tensorFieldData, protowire.BytesType)
	b = protowire.AppendBytes(b, t.Data)
	return b
}

// UnmarshalTensor decodes a Tensor previously produced by Marshal.
func UnmarshalTensor(data []byte) (Tensor, error) {
	var t Tensor
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor tag")
		}
		data = data[n:]

		switch num {
		case tensorFieldDataType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor data_type field")
			}
			t.DataType = TensorDataType(v)
			data = data[n:]

		case tensorFieldShape:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor shape field")
			}
			data = data[n:]
			rest := v
			for len(rest) > 0 {
				s, sn := protowire.ConsumeVarint(rest)
				if sn < 0 {
					return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor shape entry")
				}
				t.Shape = append(t.Shape, s)
				rest = rest[sn:]
			}

		case tensorFieldData:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor data field")
			}
			t.Data = append([]byte(nil), v...)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Tensor{}, idxerrors.NewInvalidInput("pq: malformed tensor field %d", num)
			}
			data = data[n:]
		}
	}
	return t, nil
}

// Pq is the wire message a ProductQuantizer round-trips through (spec.md
// §6): num_bits, num_sub_vectors, dimension, a legacy flat codebook array
// (always empty on write), and the preferred tensor form.
type Pq struct {
	NumBits        uint32
	NumSubVectors  uint32
	Dimension      uint32
	Codebook       []float32 // legacy; empty on write
	CodebookTensor *Tensor
}

const (
	pqFieldNumBits        = 1
	pqFieldNumSubVectors  = 2
	pqFieldDimension      = 3
	pqFieldCodebook       = 4
	pqFieldCodebookTensor = 5
)

// Marshal encodes pq. Every entry of Codebook is written as a legacy
// codebook field, whether or not CodebookTensor is set; the ToProto
// constructors in serialize.go always populate the tensor form and leave
// Codebook empty (spec.md §4.2 "serialization").
func (pq Pq) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, pqFieldNumBits, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(pq.NumBits))

	b = protowire.AppendTag(b, pqFieldNumSubVectors, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(pq.NumSubVectors))

	b = protowire.AppendTag(b, pqFieldDimension, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(pq.Dimension))

	for _, v := range pq.Codebook {
		b = protowire.AppendTag(b, pqFieldCodebook, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}

	if pq.CodebookTensor != nil {
		b = protowire.AppendTag(b, pqFieldCodebookTensor, protowire.BytesType)
		b = protowire.AppendBytes(b, pq.CodebookTensor.Marshal())
	}
	return b
}

// UnmarshalPq decodes a Pq message previously produced by Marshal.
func UnmarshalPq(data []byte) (Pq, error) {
	var out Pq
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Pq{}, idxerrors.NewInvalidInput("pq: malformed message tag")
		}
		data = data[n:]

		switch num {
		case pqFieldNumBits:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed num_bits field")
			}
			out.NumBits = uint32(v)
			data = data[n:]

		case pqFieldNumSubVectors:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed num_sub_vectors field")
			}
			out.NumSubVectors = uint32(v)
			data = data[n:]

		case pqFieldDimension:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed dimension field")
			}
			out.Dimension = uint32(v)
			data = data[n:]

		case pqFieldCodebook:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed codebook field")
			}
			out.Codebook = append(out.Codebook, math.Float32frombits(v))
			data = data[n:]

		case pqFieldCodebookTensor:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed codebook_tensor field")
			}
			tensor, err := UnmarshalTensor(v)
			if err != nil {
				return Pq{}, err
			}
			out.CodebookTensor = &tensor
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Pq{}, idxerrors.NewInvalidInput("pq: malformed field %d", num)
			}
			data = data[n:]
		}
	}
	return out, nil
}

// encodeFloat32sLE packs values as little-endian 4-byte records for
// embedding in a Tensor's Data field.
func encodeFloat32sLE(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32sLE(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func encodeFloat64sLE(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeFloat64sLE(data []byte) []float64 {
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}
