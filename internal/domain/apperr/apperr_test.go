package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_Wrapped(t *testing.T) {
	base := New(KindStateConflict, "capacity_exceeded", "capacity exceeded")
	err := fmt.Errorf("product %s: %w", "p1", base)

	if got := KindOf(err); got != KindStateConflict {
		t.Fatalf("KindOf = %v, want %v", got, KindStateConflict)
	}
	if got := CodeOf(err); got != "capacity_exceeded" {
		t.Fatalf("CodeOf = %q", got)
	}
	if !errors.Is(err, base) {
		t.Fatal("errors.Is should match the wrapped sentinel")
	}
}

func TestKindOf_Plain(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindUnknown {
		t.Fatal("plain error must be unknown")
	}
	if CodeOf(err) != "internal" {
		t.Fatal("plain error code must be internal")
	}
	if KindOf(nil) != KindUnknown {
		t.Fatal("nil must be unknown")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	a := New(KindValidation, "x", "same message")
	b := New(KindValidation, "x", "same message")
	if errors.Is(a, b) {
		t.Fatal("sentinels with equal fields must not match each other")
	}
}
