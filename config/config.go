// Package config loads and validates the JSON configuration shared by the
// CLI and embedding applications, and converts it into the strongly typed
// configs of the law, analyze and compute packages.
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/law"
	"github.com/cwbudde/signalyzer/window"
)

// Config is the external configuration surface. Treat it as immutable after
// Default or Load.
type Config struct {
	LawKind       string             `json:"law_kind"`
	LawParameters map[string]float64 `json:"law_parameters"`

	SampleRate float64 `json:"sample_rate"`
	Duration   float64 `json:"duration"`

	WindowKind         string  `json:"window_kind"`
	WindowSize         int     `json:"window_size"`
	Overlap            float64 `json:"overlap"`
	TransformSize      int     `json:"transform_size"`
	DetectionThreshold float64 `json:"detection_threshold"`
	MaxHarmonics       int     `json:"max_harmonics"`

	RingCapacity int `json:"ring_buffer_capacity"`
	FrameLength  int `json:"frame_length"`

	ComputeStrategy string `json:"compute_strategy"`
}

// Default returns the standard configuration: a 440 Hz sine analyzed with a
// hann window on the automatically selected engine.
func Default() Config {
	return Config{
		LawKind: "sine",
		LawParameters: map[string]float64{
			law.ParamFrequency: 440,
			law.ParamAmplitude: 1,
		},
		SampleRate:         48000,
		Duration:           1,
		WindowKind:         "hann",
		WindowSize:         1024,
		Overlap:            0.5,
		TransformSize:      4096,
		DetectionThreshold: 0.01,
		MaxHarmonics:       10,
		RingCapacity:       64,
		FrameLength:        1024,
		ComputeStrategy:    "auto",
	}
}

// Load reads a JSON configuration, filling absent fields from Default and
// rejecting unknown keys. The result is validated.
func Load(r io.Reader) (Config, error) {
	cfg := Default()

	// The default parameter set belongs to the default law. Decoding into
	// the live map would merge sine parameters into whatever law the file
	// picks, so the file's set replaces it instead.
	cfg.LawParameters = nil

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.LawParameters == nil {
		if cfg.LawKind == "sine" {
			cfg.LawParameters = Default().LawParameters
		} else {
			cfg.LawParameters = map[string]float64{}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field and reports all failures at once.
func (c Config) Validate() error {
	var errs error

	if _, err := law.ParseKind(c.LawKind); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("config: law_kind: %w", err))
	} else if _, err := c.Law(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("config: law_parameters: %w", err))
	}

	if c.SampleRate <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: sample_rate must be > 0: got %g", c.SampleRate))
	}
	if c.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: duration must be >= 0: got %g", c.Duration))
	}

	if _, err := window.ParseKind(c.WindowKind); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("config: window_kind: %w", err))
	} else if ac, err := c.Analysis(); err == nil {
		if err := ac.Validate(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.RingCapacity < 1 {
		errs = multierr.Append(errs, fmt.Errorf("config: ring_buffer_capacity must be >= 1: got %d", c.RingCapacity))
	}
	if c.FrameLength < 1 {
		errs = multierr.Append(errs, fmt.Errorf("config: frame_length must be >= 1: got %d", c.FrameLength))
	}

	if _, err := compute.ParseStrategy(c.ComputeStrategy); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("config: compute_strategy: %w", err))
	}

	return errs
}

// Law builds the generation law from law_kind and law_parameters.
func (c Config) Law() (law.Law, error) {
	kind, err := law.ParseKind(c.LawKind)
	if err != nil {
		return law.Law{}, err
	}

	return law.New(kind, law.Params(c.LawParameters))
}

// Analysis maps the spectral fields onto an analyze.Config. The transform
// size is normalized the same way analyze.New would.
func (c Config) Analysis() (analyze.Config, error) {
	kind, err := window.ParseKind(c.WindowKind)
	if err != nil {
		return analyze.Config{}, err
	}

	return analyze.NormalizeConfig(analyze.Config{
		WindowKind:         kind,
		WindowSize:         c.WindowSize,
		Overlap:            c.Overlap,
		TransformSize:      c.TransformSize,
		DetectionThreshold: c.DetectionThreshold,
		MaxHarmonics:       c.MaxHarmonics,
	}), nil
}

// Strategy resolves the compute selection policy.
func (c Config) Strategy() (compute.Strategy, error) {
	return compute.ParseStrategy(c.ComputeStrategy)
}
