package config

import (
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/law"
	"github.com/cwbudde/signalyzer/window"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	lw, err := cfg.Law()
	if err != nil {
		t.Fatalf("Law() error = %v", err)
	}
	if lw.Kind() != law.KindSine {
		t.Errorf("Kind() = %v, want sine", lw.Kind())
	}
	if f, _ := lw.Param(law.ParamFrequency); f != 440 {
		t.Errorf("frequency = %g, want 440", f)
	}

	ac, err := cfg.Analysis()
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if ac.WindowKind != window.KindHann || ac.WindowSize != 1024 || ac.TransformSize != 4096 {
		t.Errorf("Analysis() = %v/%d/%d, want hann/1024/4096", ac.WindowKind, ac.WindowSize, ac.TransformSize)
	}

	st, err := cfg.Strategy()
	if err != nil {
		t.Fatalf("Strategy() error = %v", err)
	}
	if st != compute.StrategyAuto {
		t.Errorf("Strategy() = %v, want auto", st)
	}
}

func TestLoadPartial(t *testing.T) {
	cfg, err := Load(strings.NewReader(`{"sample_rate": 96000, "window_kind": "blackman"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SampleRate != 96000 {
		t.Errorf("SampleRate = %g, want 96000", cfg.SampleRate)
	}
	if cfg.WindowKind != "blackman" {
		t.Errorf("WindowKind = %q, want blackman", cfg.WindowKind)
	}

	// Everything else keeps its default.
	if cfg.LawKind != "sine" || cfg.WindowSize != 1024 || cfg.ComputeStrategy != "auto" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	if f := cfg.LawParameters[law.ParamFrequency]; f != 440 {
		t.Errorf("frequency = %g, want 440", f)
	}
}

func TestLoadReplacesLawParameters(t *testing.T) {
	cfg, err := Load(strings.NewReader(`{"law_kind": "noise", "law_parameters": {"seed": 42}}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	lw, err := cfg.Law()
	if err != nil {
		t.Fatalf("Law() error = %v", err)
	}
	if lw.Kind() != law.KindNoise {
		t.Errorf("Kind() = %v, want noise", lw.Kind())
	}
	if s, _ := lw.Param(law.ParamSeed); s != 42 {
		t.Errorf("seed = %g, want 42", s)
	}

	// The sine defaults must not leak into a noise law.
	if _, ok := lw.Param(law.ParamFrequency); ok {
		t.Error("frequency leaked into the noise parameter set")
	}
}

func TestLoadLawWithoutParameters(t *testing.T) {
	cfg, err := Load(strings.NewReader(`{"law_kind": "noise"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := cfg.Law(); err != nil {
		t.Fatalf("Law() error = %v", err)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"bogus": 1}`)); err == nil {
		t.Fatal("Load() error = nil for unknown field")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"sample_rate": `)); err == nil {
		t.Fatal("Load() error = nil for malformed JSON")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"sample_rate": -1}`)); err == nil {
		t.Fatal("Load() error = nil for negative sample rate")
	}
}

func TestValidateAggregatesFailures(t *testing.T) {
	cfg := Default()
	cfg.LawKind = "wobble"
	cfg.SampleRate = -1
	cfg.WindowKind = "kaiser"
	cfg.ComputeStrategy = "tpu"
	cfg.RingCapacity = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}

	if n := len(multierr.Errors(err)); n != 5 {
		t.Fatalf("len(multierr.Errors) = %d, want 5: %v", n, err)
	}
}

func TestValidateBadLawParameters(t *testing.T) {
	cfg := Default()
	cfg.LawParameters = map[string]float64{law.ParamFrequency: -5}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil for negative frequency")
	}
	if !strings.Contains(err.Error(), "law_parameters") {
		t.Errorf("error %q does not name law_parameters", err)
	}
}

func TestStrategyConverter(t *testing.T) {
	cfg := Default()
	cfg.ComputeStrategy = "cpu"

	st, err := cfg.Strategy()
	if err != nil {
		t.Fatalf("Strategy() error = %v", err)
	}
	if st != compute.StrategyCPU {
		t.Fatalf("Strategy() = %v, want cpu", st)
	}
}

func TestAnalysisNormalizesTransform(t *testing.T) {
	cfg := Default()
	cfg.WindowSize = 5000
	cfg.TransformSize = 1000

	ac, err := cfg.Analysis()
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if ac.TransformSize != 8192 {
		t.Fatalf("TransformSize = %d, want 8192", ac.TransformSize)
	}
}
