package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain statistics of a sample slice.
type Stats struct {
	Mean        float64
	StdDev      float64
	RMS         float64
	Min         float64
	Max         float64
	PeakToPeak  float64
	CrestFactor float64 // peak / RMS, 0 for silent input
	Skewness    float64
	Kurtosis    float64 // excess kurtosis
}

// ComputeStats computes time-domain statistics of the samples. An empty
// slice yields the zero Stats.
func ComputeStats(samples []float64) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}

	var st Stats
	st.Mean = stat.Mean(samples, nil)
	st.Min = floats.Min(samples)
	st.Max = floats.Max(samples)
	st.PeakToPeak = st.Max - st.Min
	st.RMS = math.Sqrt(floats.Dot(samples, samples) / float64(n))

	if st.RMS > 0 {
		st.CrestFactor = math.Max(math.Abs(st.Max), math.Abs(st.Min)) / st.RMS
	}

	if n > 1 {
		st.StdDev = stat.StdDev(samples, nil)
	}

	// The bias-corrected higher moments need at least four samples and a
	// nonzero spread.
	if n > 3 && st.StdDev > 0 {
		st.Skewness = stat.Skew(samples, nil)
		st.Kurtosis = stat.ExKurtosis(samples, nil)
	}

	return st
}

// AmpTodB converts an amplitude to decibels: 20*log10(|value|).
// Returns -Inf for zero values.
func AmpTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// RatioTodB converts a linear ratio to decibels: 20*log10(value).
// Returns -Inf for zero values.
func RatioTodB(value float64) float64 {
	if value == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(value)
}
