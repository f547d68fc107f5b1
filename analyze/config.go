package analyze

import (
	"fmt"

	"github.com/cwbudde/signalyzer/window"
)

const (
	defaultWindowSize         = 1024
	defaultTransformSize      = 4096
	defaultDetectionThreshold = 0.01
	defaultMaxHarmonics       = 10
	defaultRangeLowerHz       = 20.0
	defaultRangeUpperHz       = 20000.0
)

// Config holds spectral analysis parameters.
type Config struct {
	// WindowKind selects the analysis window. The zero value is the
	// rectangular window.
	WindowKind window.Kind

	// WindowSize is the frame length in samples.
	WindowSize int

	// Overlap is the fraction of each frame shared with the next, in [0, 1).
	Overlap float64

	// TransformSize is the FFT size. Frames are zero padded up to it. It must
	// be a power of two at least WindowSize; NormalizeConfig rounds it up.
	TransformSize int

	// DetectionThreshold is the minimum amplitude for the fundamental, and,
	// relative to the fundamental, for harmonics.
	DetectionThreshold float64

	// MaxHarmonics caps the detected components, fundamental included.
	MaxHarmonics int

	// FundamentalRange restricts the fundamental search in Hz. It is clamped
	// to [bin width, Nyquist] during analysis.
	FundamentalRange [2]float64

	// EnvelopeSmoothing is the moving-average width in samples applied to the
	// envelope; values below 2 disable smoothing.
	EnvelopeSmoothing int
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() Config {
	return Config{
		WindowKind:         window.KindHann,
		WindowSize:         defaultWindowSize,
		Overlap:            0.5,
		TransformSize:      defaultTransformSize,
		DetectionThreshold: defaultDetectionThreshold,
		MaxHarmonics:       defaultMaxHarmonics,
		FundamentalRange:   [2]float64{defaultRangeLowerHz, defaultRangeUpperHz},
	}
}

// NormalizeConfig fills zero values with defaults and rounds the transform
// size up to the next power of two covering the window.
func NormalizeConfig(cfg Config) Config {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = defaultWindowSize
	}

	if cfg.TransformSize == 0 {
		cfg.TransformSize = defaultTransformSize
	}

	if cfg.DetectionThreshold == 0 {
		cfg.DetectionThreshold = defaultDetectionThreshold
	}

	if cfg.MaxHarmonics == 0 {
		cfg.MaxHarmonics = defaultMaxHarmonics
	}

	if cfg.FundamentalRange[0] == 0 && cfg.FundamentalRange[1] == 0 {
		cfg.FundamentalRange = [2]float64{defaultRangeLowerHz, defaultRangeUpperHz}
	}

	if cfg.WindowSize > 0 {
		need := max(cfg.TransformSize, cfg.WindowSize)
		cfg.TransformSize = nextPowerOfTwo(need)
	}

	return cfg
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if window.Info(c.WindowKind).FirstMinimumBins == 0 {
		return &ConfigError{Field: "window_kind", Reason: fmt.Sprintf("unknown window kind %d", int(c.WindowKind))}
	}

	if c.WindowSize < 2 {
		return &ConfigError{Field: "window_size", Reason: fmt.Sprintf("must be >= 2: got %d", c.WindowSize)}
	}

	if c.Overlap < 0 || c.Overlap >= 1 {
		return &ConfigError{Field: "overlap", Reason: fmt.Sprintf("must be in [0, 1): got %g", c.Overlap)}
	}

	if c.TransformSize < c.WindowSize {
		return &ConfigError{Field: "transform_size", Reason: fmt.Sprintf("must be >= window size %d: got %d", c.WindowSize, c.TransformSize)}
	}

	if c.TransformSize&(c.TransformSize-1) != 0 {
		return &ConfigError{Field: "transform_size", Reason: fmt.Sprintf("must be a power of two: got %d", c.TransformSize)}
	}

	if c.DetectionThreshold <= 0 {
		return &ConfigError{Field: "detection_threshold", Reason: fmt.Sprintf("must be > 0: got %g", c.DetectionThreshold)}
	}

	if c.MaxHarmonics < 1 {
		return &ConfigError{Field: "max_harmonics", Reason: fmt.Sprintf("must be >= 1: got %d", c.MaxHarmonics)}
	}

	if c.FundamentalRange[0] <= 0 || c.FundamentalRange[1] < c.FundamentalRange[0] {
		return &ConfigError{Field: "fundamental_range", Reason: fmt.Sprintf("must satisfy 0 < low <= high: got [%g, %g]", c.FundamentalRange[0], c.FundamentalRange[1])}
	}

	if c.EnvelopeSmoothing < 0 {
		return &ConfigError{Field: "envelope_smoothing", Reason: fmt.Sprintf("must be >= 0: got %d", c.EnvelopeSmoothing)}
	}

	return nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
