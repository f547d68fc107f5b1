package testutil

import (
	"math"
	"testing"
)

// RequireNear fails t unless got is within tol of want.
func RequireNear(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v +- %v", what, got, want, tol)
	}
}

// RequireSliceNear fails t if got and want differ in length or if any
// element pair differs by more than tol.
func RequireSliceNear(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > tol {
			t.Fatalf("index %d: got %v, want %v (diff %v > %v)", i, got[i], want[i], d, tol)
		}
	}
}
