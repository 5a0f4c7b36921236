package pq

import (
	"github.com/lancedb/lance-index-core/indexfile"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

// CodebookFileName is the canonical name a serialized PQ codebook is
// stored under within an index's BatchStore (spec.md §6).
const CodebookFileName = "pq.lance"

// SaveF32 serializes pq as a Pq protobuf message (tensor form, Float32
// dtype) and writes it to store under name.
func SaveF32(store indexfile.BatchStore, name string, pq *ProductQuantizer[float32]) error {
	msg := ToProtoF32(pq)
	return idxerrors.WrapIndex(store.Put(name, msg.Marshal()), "pq: save")
}

// LoadF32 reads a serialized Pq message from store under name and
// reconstructs a float32 ProductQuantizer, promoting a Float16 tensor if
// that's what was stored.
func LoadF32(store indexfile.BatchStore, name string, distanceType disttype.DistanceType) (*ProductQuantizer[float32], error) {
	data, err := store.Get(name)
	if err != nil {
		return nil, idxerrors.WrapIndex(err, "pq: load")
	}
	msg, err := UnmarshalPq(data)
	if err != nil {
		return nil, idxerrors.WrapInvalidInput(err, "pq: decode message")
	}
	return FromProtoF32(msg, distanceType)
}
