package pq

import (
	"github.com/x448/float16"

	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

// ToProtoF32 encodes a float32 ProductQuantizer as a Pq message, always
// emitting the tensor form and leaving the legacy flat field empty (spec.md
// §4.2 "serialization").
func ToProtoF32(pq *ProductQuantizer[float32]) Pq {
	return Pq{
		NumBits:       uint32(pq.NumBits),
		NumSubVectors: uint32(pq.NumSubVectors),
		Dimension:     uint32(pq.Dimension),
		CodebookTensor: &Tensor{
			DataType: DataTypeFloat32,
			Shape:    []uint64{uint64(pq.Codebook.NumCentroids), uint64(pq.Codebook.Dimension)},
			Data:     encodeFloat32sLE(pq.Codebook.Flat),
		},
	}
}

// ToProtoF64 is ToProtoF32's float64 counterpart.
func ToProtoF64(pq *ProductQuantizer[float64]) Pq {
	return Pq{
		NumBits:       uint32(pq.NumBits),
		NumSubVectors: uint32(pq.NumSubVectors),
		Dimension:     uint32(pq.Dimension),
		CodebookTensor: &Tensor{
			DataType: DataTypeFloat64,
			Shape:    []uint64{uint64(pq.Codebook.NumCentroids), uint64(pq.Codebook.Dimension)},
			Data:     encodeFloat64sLE(pq.Codebook.Flat),
		},
	}
}

// ToProtoFloat16 encodes a float32-resident ProductQuantizer's codebook as
// half-precision Tensor data, tagged DataTypeFloat16. This is the path a
// caller takes when the codebook was trained or supplied in half precision
// and should round-trip through the file format that way, wiring
// x448/float16 for the element conversion.
func ToProtoFloat16(pq *ProductQuantizer[float32]) Pq {
	data := make([]byte, 2*len(pq.Codebook.Flat))
	for i, v := range pq.Codebook.Flat {
		bits := float16.Fromfloat32(v)
		data[i*2] = byte(bits)
		data[i*2+1] = byte(bits >> 8)
	}
	return Pq{
		NumBits:       uint32(pq.NumBits),
		NumSubVectors: uint32(pq.NumSubVectors),
		Dimension:     uint32(pq.Dimension),
		CodebookTensor: &Tensor{
			DataType: DataTypeFloat16,
			Shape:    []uint64{uint64(pq.Codebook.NumCentroids), uint64(pq.Codebook.Dimension)},
			Data:     data,
		},
	}
}

// FromProtoF32 reconstructs a float32 ProductQuantizer from a decoded Pq
// message, promoting a Float16 tensor to float32 and rejecting a Float64
// one (use FromProtoF64 for that). DistanceType Cosine is normalized to L2
// at this boundary, matching Build.
func FromProtoF32(msg Pq, distanceType disttype.DistanceType) (*ProductQuantizer[float32], error) {
	distanceType = disttype.NormalizeForPQ(distanceType)

	var flat []float32
	var numCentroids int
	switch {
	case msg.CodebookTensor != nil:
		t := msg.CodebookTensor
		if len(t.Shape) != 2 {
			return nil, idxerrors.NewInvalidInput("pq: codebook tensor shape must have 2 dimensions, got %d", len(t.Shape))
		}
		numCentroids = int(t.Shape[0])
		switch t.DataType {
		case DataTypeFloat32:
			flat = decodeFloat32sLE(t.Data)
		case DataTypeFloat16:
			flat = make([]float32, len(t.Data)/2)
			for i := range flat {
				bits := uint16(t.Data[i*2]) | uint16(t.Data[i*2+1])<<8
				flat[i] = float16.Frombits(bits).Float32()
			}
		case DataTypeFloat64:
			return nil, idxerrors.NewInvalidInput("pq: codebook tensor is float64, use FromProtoF64")
		default:
			return nil, idxerrors.NewInvalidInput("pq: unsupported tensor data type %d", t.DataType)
		}
	case len(msg.Codebook) > 0:
		// Legacy path: a flat Float32 array with no tensor envelope,
		// assumed dimension columns (spec.md §6).
		flat = msg.Codebook
		numCentroids = len(flat) / int(msg.Dimension)
	default:
		return nil, idxerrors.NewInvalidInput("pq: message has neither a codebook tensor nor a legacy codebook array")
	}

	codebook, err := NewCodebook(flat, numCentroids, int(msg.Dimension))
	if err != nil {
		return nil, err
	}
	return &ProductQuantizer[float32]{
		NumSubVectors: int(msg.NumSubVectors),
		NumBits:       int(msg.NumBits),
		Dimension:     int(msg.Dimension),
		Codebook:      codebook,
		DistanceType:  distanceType,
	}, nil
}

// FromProtoF64 reconstructs a float64 ProductQuantizer from a decoded Pq
// message whose tensor is Float64.
func FromProtoF64(msg Pq, distanceType disttype.DistanceType) (*ProductQuantizer[float64], error) {
	distanceType = disttype.NormalizeForPQ(distanceType)

	if msg.CodebookTensor == nil || msg.CodebookTensor.DataType != DataTypeFloat64 {
		return nil, idxerrors.NewInvalidInput("pq: message does not carry a float64 codebook tensor")
	}
	t := msg.CodebookTensor
	if len(t.Shape) != 2 {
		return nil, idxerrors.NewInvalidInput("pq: codebook tensor shape must have 2 dimensions, got %d", len(t.Shape))
	}
	numCentroids := int(t.Shape[0])
	flat := decodeFloat64sLE(t.Data)

	codebook, err := NewCodebook(flat, numCentroids, int(msg.Dimension))
	if err != nil {
		return nil, err
	}
	return &ProductQuantizer[float64]{
		NumSubVectors: int(msg.NumSubVectors),
		NumBits:       int(msg.NumBits),
		Dimension:     int(msg.Dimension),
		Codebook:      codebook,
		DistanceType:  distanceType,
	}, nil
}
