//go:build !idxdebug

package idxerrors

// AssertDebug is a no-op in production builds. Build with -tags idxdebug
// to enable the debug-only sanity checks described in the PQ distance
// design notes (e.g. catching a Cosine distance type that reached the
// distance table instead of being substituted for L2 upstream).
func AssertDebug(cond bool, format string, args ...interface{}) {}
