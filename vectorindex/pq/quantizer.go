package pq

import (
	"github.com/lancedb/lance-index-core/colbatch"
	"github.com/lancedb/lance-index-core/internal/idxerrors"
	"github.com/lancedb/lance-index-core/metrics"
	"github.com/lancedb/lance-index-core/vectorindex/disttype"
)

// PQCodeColumn is the fixed name a PQ output column is always advertised
// under, regardless of num_sub_vectors/num_bits (spec.md §4.2, §6).
const PQCodeColumn = "__pq_code"

// KMeansTrainer learns numCentroids centroids of width dimension from a
// flat, row-major training set (vectors back to back). It is the external
// trainer spec.md §4.2 defers to when no codebook is supplied directly;
// this package ships no implementation of it.
type KMeansTrainer[T Float] interface {
	Train(data []T, dimension, numCentroids int) (Codebook[T], error)
}

// BuildParams configures ProductQuantizer construction.
type BuildParams[T Float] struct {
	NumSubVectors int
	NumBits       int
	// Codebook, if non-nil, is used as-is instead of training one.
	Codebook *Codebook[T]
	Trainer  KMeansTrainer[T]
}

// ProductQuantizer is a trained (or supplied) codebook paired with the
// sub-vector/bit-width configuration used to encode vectors into codes and
// to score codes against a query (spec.md §4.2).
type ProductQuantizer[T Float] struct {
	NumSubVectors int
	NumBits       int
	Dimension     int
	Codebook      Codebook[T]
	DistanceType  disttype.DistanceType
}

// Build constructs a ProductQuantizer from a flat, row-major batch of
// vectors (no nulls permitted -- the caller must have already filtered
// them out). DistanceType Cosine is normalized to L2 at this boundary.
func Build[T Float](data []T, dimension int, distanceType disttype.DistanceType, params BuildParams[T]) (*ProductQuantizer[T], error) {
	if len(data)%dimension != 0 {
		return nil, idxerrors.NewInvalidInput("pq: training data length %d is not a multiple of dimension %d", len(data), dimension)
	}
	distanceType = disttype.NormalizeForPQ(distanceType)

	if params.Codebook != nil {
		return &ProductQuantizer[T]{
			NumSubVectors: params.NumSubVectors,
			NumBits:       params.NumBits,
			Dimension:     dimension,
			Codebook:      *params.Codebook,
			DistanceType:  distanceType,
		}, nil
	}
	if params.Trainer == nil {
		return nil, idxerrors.NewInvalidInput("pq: build requires either a codebook or a trainer")
	}
	numCentroids := numCentroidsForBits(params.NumBits)
	codebook, err := params.Trainer.Train(data, dimension, numCentroids)
	if err != nil {
		return nil, idxerrors.WrapIndex(err, "pq: train codebook")
	}
	return &ProductQuantizer[T]{
		NumSubVectors: params.NumSubVectors,
		NumBits:       params.NumBits,
		Dimension:     dimension,
		Codebook:      codebook,
		DistanceType:  distanceType,
	}, nil
}

func numCentroidsForBits(numBits int) int {
	return 1 << uint(numBits)
}

// Retrain replaces the quantizer's codebook in place with one trainer learns
// from data. The existing codebook is not passed to the trainer.
func (pq *ProductQuantizer[T]) Retrain(data []T, trainer KMeansTrainer[T]) error {
	numCentroids := numCentroidsForBits(pq.NumBits)
	codebook, err := trainer.Train(data, pq.Dimension, numCentroids)
	if err != nil {
		return idxerrors.WrapIndex(err, "pq: retrain codebook")
	}
	pq.Codebook = codebook
	return nil
}

// CodeDim is the number of bytes each encoded vector occupies:
// ceil(num_sub_vectors * num_bits / 8).
func (pq *ProductQuantizer[T]) CodeDim() int {
	return (pq.NumSubVectors*pq.NumBits + 7) / 8
}

// Field describes the output column Quantize populates: a
// FixedSizeList<UInt8, code_dim> named PQCodeColumn, nullable the way a
// vector column that may contain nulls upstream is (spec.md §4.2 "Field
// descriptor").
func (pq *ProductQuantizer[T]) Field() colbatch.Field {
	return colbatch.FixedSizeListField(PQCodeColumn, colbatch.UInt8, pq.CodeDim(), true)
}

// Centroids returns the gathered centroid slice for sub-vector subIdx, of
// length NumCentroids*subDim.
func (pq *ProductQuantizer[T]) Centroids(subIdx int) []T {
	return pq.Codebook.SubVectorCentroids(pq.NumSubVectors, subIdx)
}

// Quantize encodes a flat, row-major batch of vectors (length a multiple
// of Dimension) into packed PQ codes, one CodeDim()-byte row per input
// vector (spec.md §4.2 "encoding").
func (pq *ProductQuantizer[T]) Quantize(vectors []T) ([]byte, error) {
	if pq.NumBits != 4 && pq.NumBits != 8 {
		return nil, idxerrors.NewIndex("pq: num_bits %d not supported", pq.NumBits)
	}
	if pq.NumBits == 4 && pq.NumSubVectors%2 != 0 {
		return nil, idxerrors.NewInvalidInput("pq: num_sub_vectors must be divisible by 2 for num_bits=4, got %d", pq.NumSubVectors)
	}
	if len(vectors)%pq.Dimension != 0 {
		return nil, idxerrors.NewInvalidInput("pq: vector batch length %d is not a multiple of dimension %d", len(vectors), pq.Dimension)
	}

	subDim := pq.Dimension / pq.NumSubVectors
	numVectors := len(vectors) / pq.Dimension
	codes := make([]byte, numVectors*pq.CodeDim())

	metrics.DefaultRegistry.Counter("pq_quantize_vectors_total").Add(int64(numVectors))

	subVectorCodes := make([]byte, pq.NumSubVectors)
	for v := 0; v < numVectors; v++ {
		vector := vectors[v*pq.Dimension : (v+1)*pq.Dimension]
		for sub := 0; sub < pq.NumSubVectors; sub++ {
			centroids := pq.Centroids(sub)
			subVector := vector[sub*subDim : (sub+1)*subDim]
			subVectorCodes[sub] = byte(nearestCentroid(centroids, subVector, subDim, pq.DistanceType))
		}
		if pq.NumBits == 4 {
			for k := 0; k < pq.NumSubVectors/2; k++ {
				codes[v*pq.CodeDim()+k] = (subVectorCodes[2*k+1] << 4) | (subVectorCodes[2*k] & 0x0F)
			}
		} else {
			copy(codes[v*pq.CodeDim():(v+1)*pq.CodeDim()], subVectorCodes)
		}
	}
	return codes, nil
}

// nearestCentroid returns the index of the centroid in centroids (laid out
// as numCentroids*subDim) nearest to subVector under distanceType.
func nearestCentroid[T Float](centroids []T, subVector []T, subDim int, distanceType disttype.DistanceType) int {
	numCentroids := len(centroids) / subDim
	best := 0
	var bestScore float64
	for c := 0; c < numCentroids; c++ {
		centroid := centroids[c*subDim : (c+1)*subDim]
		var score float64
		switch distanceType {
		case disttype.Dot:
			score = -dotProduct(subVector, centroid)
		default:
			score = l2Squared(subVector, centroid)
		}
		if c == 0 || score < bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func l2Squared[T Float](a, b []T) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func dotProduct[T Float](a, b []T) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
