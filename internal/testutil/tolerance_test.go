package testutil

import "testing"

func TestRequireNearPasses(t *testing.T) {
	RequireNear(t, "value", 1.0005, 1.0, 1e-3)
}

func TestRequireSliceNearPasses(t *testing.T) {
	RequireSliceNear(t, []float64{1, 2}, []float64{1.0001, 1.9999}, 1e-3)
}
