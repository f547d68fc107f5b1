// Package testutil provides deterministic sample builders and tolerance
// asserts shared by the package tests.
package testutil

import "math"

// Sine returns n samples of amp*sin(2*pi*freq*t) sampled at rate.
func Sine(n int, rate, freq, amp float64) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / rate
	for i := range out {
		out[i] = amp * math.Sin(step*float64(i))
	}
	return out
}

// DC returns n samples of a constant value.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Mix sums the inputs element-wise. The result has the length of the
// shortest input.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}

	n := len(signals[0])
	for _, s := range signals[1:] {
		if len(s) < n {
			n = len(s)
		}
	}

	out := make([]float64, n)
	for _, s := range signals {
		for i := 0; i < n; i++ {
			out[i] += s[i]
		}
	}
	return out
}
