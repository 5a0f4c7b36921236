// Package disttype holds the small distance-type enum shared by the
// product quantizer and the residual transform, so neither package needs
// to import the other just to agree on what "L2" means.
package disttype

// DistanceType selects the vector distance metric a quantizer or transform
// is configured for.
type DistanceType int

const (
	L2 DistanceType = iota
	Cosine
	Dot
)

func (d DistanceType) String() string {
	switch d {
	case L2:
		return "l2"
	case Cosine:
		return "cosine"
	case Dot:
		return "dot"
	default:
		return "unknown"
	}
}

// NormalizeForPQ applies the PQ boundary substitution: cosine distance is
// always normalized to L2 at this boundary, since PQ expects callers to
// have L2-normalized their vectors upstream (spec.md §4.2).
func NormalizeForPQ(d DistanceType) DistanceType {
	if d == Cosine {
		return L2
	}
	return d
}
