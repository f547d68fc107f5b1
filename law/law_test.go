package law

import (
	"errors"
	"math"
	"testing"
)

func mustLaw(t *testing.T, kind Kind, params Params) Law {
	t.Helper()
	l, err := New(kind, params)
	if err != nil {
		t.Fatalf("New(%v): %v", kind, err)
	}
	return l
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"sine", KindSine},
		{"cosine", KindCosine},
		{"square", KindSquare},
		{"triangle", KindTriangle},
		{"sawtooth", KindSawtooth},
		{"pulse", KindPulse},
		{"chirp", KindChirp},
		{"noise", KindNoise},
		{"harmonic", KindHarmonic},
		{" Sine ", KindSine},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKind(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := ParseKind("trapezoidal"); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("ParseKind(trapezoidal) err = %v, want ErrUnsupportedKind", err)
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		params Params
		param  string
	}{
		{"missing frequency", KindSine, Params{}, ParamFrequency},
		{"zero frequency", KindSine, Params{ParamFrequency: 0}, ParamFrequency},
		{"negative frequency", KindSine, Params{ParamFrequency: -100}, ParamFrequency},
		{"negative amplitude", KindSine, Params{ParamFrequency: 100, ParamAmplitude: -1}, ParamAmplitude},
		{"nan phase", KindSine, Params{ParamFrequency: 100, ParamPhase: math.NaN()}, ParamPhase},
		{"inf offset", KindSine, Params{ParamFrequency: 100, ParamOffset: math.Inf(1)}, ParamOffset},
		{"duty too large", KindPulse, Params{ParamFrequency: 100, ParamDuty: 1.5}, ParamDuty},
		{"duty negative", KindPulse, Params{ParamFrequency: 100, ParamDuty: -0.1}, ParamDuty},
		{"chirp missing end", KindChirp, Params{ParamFrequency: 100}, ParamEndFrequency},
		{"fractional harmonics", KindHarmonic, Params{ParamFrequency: 100, ParamHarmonics: 2.5}, ParamHarmonics},
		{"unknown parameter", KindSine, Params{ParamFrequency: 100, "wavelength": 3}, "wavelength"},
		{"duty on sine", KindSine, Params{ParamFrequency: 100, ParamDuty: 0.5}, ParamDuty},
	}

	for _, tc := range cases {
		_, err := New(tc.kind, tc.params)
		if err == nil {
			t.Fatalf("%s: New succeeded, want error", tc.name)
		}
		if !errors.Is(err, ErrParameter) {
			t.Fatalf("%s: err = %v, want ErrParameter", tc.name, err)
		}

		var perr *ParameterError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: err %T is not *ParameterError", tc.name, err)
		}
		if perr.Name != tc.param {
			t.Fatalf("%s: failing param = %q, want %q", tc.name, perr.Name, tc.param)
		}
	}
}

func TestZeroAmplitudeIsSilent(t *testing.T) {
	l := mustLaw(t, KindSine, Params{ParamFrequency: 440, ParamAmplitude: 0})
	for _, tt := range []float64{0, 1e-3, 0.5, 1} {
		if v := l.Eval(tt); v != 0 {
			t.Fatalf("Eval(%v) = %v, want 0", tt, v)
		}
	}
}

func TestUnsupportedKind(t *testing.T) {
	_, err := New(Kind(99), Params{})
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("err = %v, want ErrUnsupportedKind", err)
	}

	_, err = New(KindCustom, Params{})
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("KindCustom via New err = %v, want ErrUnsupportedKind", err)
	}
}

func TestSineEval(t *testing.T) {
	l := mustLaw(t, KindSine, Params{ParamFrequency: 100, ParamAmplitude: 2, ParamOffset: 1})

	if v := l.Eval(0); math.Abs(v-1) > 1e-12 {
		t.Fatalf("Eval(0) = %v, want 1", v)
	}
	// Quarter period: sin peaks.
	if v := l.Eval(1.0 / 400); math.Abs(v-3) > 1e-9 {
		t.Fatalf("Eval(T/4) = %v, want 3", v)
	}
}

func TestCosineLeadsSine(t *testing.T) {
	s := mustLaw(t, KindSine, Params{ParamFrequency: 50, ParamPhase: math.Pi / 2})
	c := mustLaw(t, KindCosine, Params{ParamFrequency: 50})

	for _, tt := range []float64{0, 0.001, 0.01, 0.02} {
		if math.Abs(s.Eval(tt)-c.Eval(tt)) > 1e-12 {
			t.Fatalf("sine(+pi/2) != cosine at t=%v", tt)
		}
	}
}

func TestSquareHalves(t *testing.T) {
	l := mustLaw(t, KindSquare, Params{ParamFrequency: 1, ParamAmplitude: 3})

	if v := l.Eval(0.1); v != 3 {
		t.Fatalf("first half = %v, want 3", v)
	}
	if v := l.Eval(0.6); v != -3 {
		t.Fatalf("second half = %v, want -3", v)
	}
}

func TestPulseDuty(t *testing.T) {
	l := mustLaw(t, KindPulse, Params{ParamFrequency: 1, ParamDuty: 0.25})

	if v := l.Eval(0.2); v != 1 {
		t.Fatalf("inside duty = %v, want 1", v)
	}
	if v := l.Eval(0.3); v != -1 {
		t.Fatalf("outside duty = %v, want -1", v)
	}
}

func TestSawtoothRamp(t *testing.T) {
	l := mustLaw(t, KindSawtooth, Params{ParamFrequency: 1})

	if v := l.Eval(0); math.Abs(v+1) > 1e-12 {
		t.Fatalf("Eval(0) = %v, want -1", v)
	}
	if v := l.Eval(0.5); math.Abs(v) > 1e-12 {
		t.Fatalf("Eval(T/2) = %v, want 0", v)
	}
	if v := l.Eval(0.999); v < 0.99 {
		t.Fatalf("end of ramp = %v, want near 1", v)
	}
}

func TestTrianglePeaks(t *testing.T) {
	l := mustLaw(t, KindTriangle, Params{ParamFrequency: 1, ParamAmplitude: 2})

	if v := l.Eval(0); math.Abs(v) > 1e-12 {
		t.Fatalf("Eval(0) = %v, want 0", v)
	}
	if v := l.Eval(0.25); math.Abs(v-2) > 1e-9 {
		t.Fatalf("Eval(T/4) = %v, want 2", v)
	}
	if v := l.Eval(0.75); math.Abs(v+2) > 1e-9 {
		t.Fatalf("Eval(3T/4) = %v, want -2", v)
	}
}

func TestHarmonicSinglePartialIsSine(t *testing.T) {
	h := mustLaw(t, KindHarmonic, Params{ParamFrequency: 120, ParamHarmonics: 1})
	s := mustLaw(t, KindSine, Params{ParamFrequency: 120})

	for _, tt := range []float64{0, 0.0001, 0.0013, 0.01} {
		if math.Abs(h.Eval(tt)-s.Eval(tt)) > 1e-12 {
			t.Fatalf("harmonic(1) != sine at t=%v", tt)
		}
	}
}

func TestHarmonicPartialWeights(t *testing.T) {
	// Second partial contributes amplitude/2 on top of the fundamental.
	h := mustLaw(t, KindHarmonic, Params{ParamFrequency: 10, ParamHarmonics: 2})

	tt := 0.003
	want := math.Sin(2*math.Pi*10*tt) + 0.5*math.Sin(2*math.Pi*20*tt)
	if got := h.Eval(tt); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Eval = %v, want %v", got, want)
	}
}

func TestChirpFixedToneWithoutSweepWindow(t *testing.T) {
	ch := mustLaw(t, KindChirp, Params{ParamFrequency: 100, ParamEndFrequency: 200})
	s := mustLaw(t, KindSine, Params{ParamFrequency: 100})

	for _, tt := range []float64{0, 0.001, 0.005} {
		if math.Abs(ch.Eval(tt)-s.Eval(tt)) > 1e-12 {
			t.Fatalf("unswept chirp != sine at t=%v", tt)
		}
	}
}

func TestChirpSweepPhase(t *testing.T) {
	// Over the sweep window the accumulated phase equals a tone at the
	// average of start and end frequencies.
	f0, f1, T := 100.0, 300.0, 2.0
	got := chirpPhase(f0, f1, T, T)
	want := 2 * math.Pi * T * (f0 + f1) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("phase at T = %v, want %v", got, want)
	}
}

func TestNoiseDeterministicPerSeed(t *testing.T) {
	a := mustLaw(t, KindNoise, Params{ParamSeed: 42})
	b := mustLaw(t, KindNoise, Params{ParamSeed: 42})
	c := mustLaw(t, KindNoise, Params{ParamSeed: 43})

	times := make([]float64, 256)
	for i := range times {
		times[i] = float64(i) / 48000
	}

	va := make([]float64, len(times))
	vb := make([]float64, len(times))
	vc := make([]float64, len(times))
	a.EvalSeries(va, times)
	b.EvalSeries(vb, times)
	c.EvalSeries(vc, times)

	same := 0
	for i := range times {
		if va[i] != vb[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
		if va[i] == vc[i] {
			same++
		}
		if va[i] < -1 || va[i] > 1 {
			t.Fatalf("noise out of range at %d: %v", i, va[i])
		}
	}
	if same > len(times)/8 {
		t.Fatalf("different seeds collided on %d of %d samples", same, len(times))
	}
}

func TestEvalSeriesMatchesEval(t *testing.T) {
	l := mustLaw(t, KindSine, Params{ParamFrequency: 440})

	times := []float64{0, 0.25e-3, 1e-3, 2e-3}
	dst := make([]float64, len(times))
	l.EvalSeries(dst, times)

	for i, tt := range times {
		if dst[i] != l.Eval(tt) {
			t.Fatalf("series[%d] = %v, Eval = %v", i, dst[i], l.Eval(tt))
		}
	}
}

func TestWithParam(t *testing.T) {
	l := mustLaw(t, KindSine, Params{ParamFrequency: 100})

	l2, err := l.WithParam(ParamFrequency, 200)
	if err != nil {
		t.Fatalf("WithParam: %v", err)
	}
	if f, _ := l2.Param(ParamFrequency); f != 200 {
		t.Fatalf("frequency = %v, want 200", f)
	}
	if f, _ := l.Param(ParamFrequency); f != 100 {
		t.Fatalf("original mutated: frequency = %v, want 100", f)
	}

	if _, err := l.WithParam(ParamFrequency, -5); !errors.Is(err, ErrParameter) {
		t.Fatalf("WithParam(-5) err = %v, want ErrParameter", err)
	}
}

func TestCustomLaw(t *testing.T) {
	RegisterCustom("ramp", func(tt float64, p Params) float64 {
		return p["slope"] * tt
	})
	defer UnregisterCustom("ramp")

	l, err := NewCustom("ramp", Params{"slope": 3})
	if err != nil {
		t.Fatalf("NewCustom: %v", err)
	}
	if v := l.Eval(2); v != 6 {
		t.Fatalf("Eval(2) = %v, want 6", v)
	}
	if l.Kind() != KindCustom || l.CustomName() != "ramp" {
		t.Fatalf("kind/name = %v/%q", l.Kind(), l.CustomName())
	}

	if _, err := NewCustom("missing", nil); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("unregistered err = %v, want ErrUnsupportedKind", err)
	}
}

func TestDescribe(t *testing.T) {
	specs, err := Describe(KindPulse)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}

	byName := map[string]ParamSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	if !byName[ParamFrequency].Required {
		t.Fatalf("frequency should be required")
	}
	if d := byName[ParamDuty]; d.Default != 0.5 || d.Max != 1 {
		t.Fatalf("duty spec = %+v", d)
	}
}

func BenchmarkEvalSeriesSine(b *testing.B) {
	l, _ := New(KindSine, Params{ParamFrequency: 1000})

	times := make([]float64, 4096)
	for i := range times {
		times[i] = float64(i) / 48000
	}
	dst := make([]float64, len(times))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.EvalSeries(dst, times)
	}
}
