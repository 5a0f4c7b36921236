package idxerrors

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid input", NewInvalidInput("bad query: %s", "full_text_search"), InvalidInput},
		{"not supported", NewNotSupported("flat index cannot answer vector queries"), NotSupported},
		{"index", NewIndex("unknown num_bits %d", 5), Index},
		{"nil", nil, Unknown},
		{"plain stdlib error", errors.New("boom"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesKind(t *testing.T) {
	base := NewInvalidInput("shape mismatch")
	wrapped := WrapInvalidInput(base, "residual transform")

	if KindOf(wrapped) != InvalidInput {
		t.Fatalf("KindOf(wrapped) = %v, want InvalidInput", KindOf(wrapped))
	}
	if wrapped == nil {
		t.Fatal("wrapped error should not be nil")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if WrapInvalidInput(nil, "x") != nil {
		t.Fatal("wrapping nil should return nil")
	}
	if WrapIndex(nil, "x") != nil {
		t.Fatal("wrapping nil should return nil")
	}
}

func TestIsHelper(t *testing.T) {
	err := NewNotSupported("x")
	if !Is(err, NotSupported) {
		t.Fatal("Is() should report true for matching kind")
	}
	if Is(err, InvalidInput) {
		t.Fatal("Is() should report false for non-matching kind")
	}
}

func TestAssertDebugNoopByDefault(t *testing.T) {
	// Without the idxdebug build tag this must never panic, even on a
	// false condition.
	AssertDebug(false, "this must not panic in production builds")
}
