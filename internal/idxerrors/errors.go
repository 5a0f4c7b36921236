// Package idxerrors implements the three-kind error taxonomy of the
// indexing subsystem: InvalidInput (a documented contract was violated),
// NotSupported (the operation is semantically undefined for this index
// variant), and Index (an internal consistency failure). Every error is
// built on github.com/cockroachdb/errors so it carries a captured stack
// trace -- the "source-location tag for logs" every error is required to
// carry -- without this package hand-rolling caller-frame capture.
package idxerrors

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies an error returned by the indexing subsystem.
type Kind int

const (
	// Unknown is returned by KindOf for errors not produced by this
	// package (including nil).
	Unknown Kind = iota
	// InvalidInput means the caller's query or batch violates a
	// documented contract: full-text search on the flat index, an
	// all-unbounded range, fragments inconsistent on row-ID metadata,
	// a shape mismatch between centroids and vectors.
	InvalidInput
	// NotSupported means the operation is semantically undefined for
	// this index variant, e.g. a vector-index capability asked of the
	// flat index.
	NotSupported
	// Index means an internal consistency failure: an unsupported
	// element type at PQ encode time, an unknown num_bits, an unknown
	// distance type.
	Index
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotSupported:
		return "not_supported"
	case Index:
		return "index"
	default:
		return "unknown"
	}
}

// sentinel markers used with errors.Mark/errors.Is to recover the Kind of
// a wrapped error without a type switch over the wrapping chain.
var (
	markInvalidInput = errors.New("idxerrors: invalid_input")
	markNotSupported = errors.New("idxerrors: not_supported")
	markIndex        = errors.New("idxerrors: index")
)

// NewInvalidInput builds an InvalidInput error with a captured stack trace.
func NewInvalidInput(format string, args ...interface{}) error {
	return mark(errors.Newf(format, args...), markInvalidInput)
}

// NewNotSupported builds a NotSupported error with a captured stack trace.
func NewNotSupported(format string, args ...interface{}) error {
	return mark(errors.Newf(format, args...), markNotSupported)
}

// NewIndex builds an Index (internal consistency) error with a captured
// stack trace.
func NewIndex(format string, args ...interface{}) error {
	return mark(errors.Newf(format, args...), markIndex)
}

// WrapInvalidInput wraps err as an InvalidInput error, preserving err's
// stack trace and chain.
func WrapInvalidInput(err error, msg string) error {
	if err == nil {
		return nil
	}
	return mark(errors.Wrap(err, msg), markInvalidInput)
}

// WrapIndex wraps err as an Index (internal consistency) error.
func WrapIndex(err error, msg string) error {
	if err == nil {
		return nil
	}
	return mark(errors.Wrap(err, msg), markIndex)
}

func mark(err error, sentinel error) error {
	return errors.Mark(err, sentinel)
}

// KindOf reports the Kind of err, walking err's wrap chain. It returns
// Unknown for nil or for errors not produced by this package.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, markInvalidInput):
		return InvalidInput
	case errors.Is(err, markNotSupported):
		return NotSupported
	case errors.Is(err, markIndex):
		return Index
	default:
		return Unknown
	}
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
