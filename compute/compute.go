// Package compute selects and provides the numeric engine the generator and
// analyzer run on. Two variants exist behind the Engine interface: a portable
// CPU engine and an accelerated vector engine. Accelerators register through
// a process-wide registry; selection probes the registered accelerator at
// most once per process and degrades to the CPU engine when the probe or a
// later call fails, announcing the fallback through a DegradedToCPU event
// exactly once.
package compute

import (
	"strings"
)

// Strategy names a compute selection policy.
type Strategy int

const (
	// StrategyAuto probes the registered accelerator and falls back to the
	// CPU engine when it is missing or unhealthy.
	StrategyAuto Strategy = iota

	// StrategyGPU requests the accelerator; selection still degrades to the
	// CPU engine (with a DegradedToCPU event) rather than failing.
	StrategyGPU

	// StrategyCPU forces the portable engine and never probes.
	StrategyCPU
)

// String returns the canonical strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyGPU:
		return "gpu"
	case StrategyCPU:
		return "cpu"
	default:
		return "unknown"
	}
}

// ParseStrategy resolves a strategy from its canonical name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto":
		return StrategyAuto, nil
	case "gpu":
		return StrategyGPU, nil
	case "cpu":
		return StrategyCPU, nil
	default:
		return 0, &UnknownStrategyError{Name: name}
	}
}

// Engine is the capability surface a compute variant must provide. All
// methods are safe for concurrent use.
type Engine interface {
	// Name identifies the variant ("cpu", "vector", ...).
	Name() string

	// EvaluateSeries writes eval(times[i]) into dst[i]. dst and times must
	// have equal length. Implementations may shard the work; eval must be
	// pure so sharding cannot change the result.
	EvaluateSeries(dst, times []float64, eval func(float64) float64) error

	// WindowedMultiply writes frame[i]*coeffs[i] into dst[i]. All three
	// slices must have equal length; dst may alias frame.
	WindowedMultiply(dst, frame, coeffs []float64) error

	// TransformForward runs a forward FFT of the real input src, zero padded
	// to the transform size derived from dst: len(dst) must be size/2+1 for
	// a power-of-two size >= len(src). dst receives the non-negative
	// frequency bins.
	TransformForward(dst []complex128, src []float64) error

	// TransformInverse runs a normalized inverse FFT over a full complex
	// spectrum. len(dst) and len(src) must equal the same power-of-two size.
	TransformInverse(dst, src []complex128) error
}
