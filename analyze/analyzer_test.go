package analyze

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/internal/testutil"
	"github.com/cwbudde/signalyzer/signal"
	"github.com/cwbudde/signalyzer/window"
)

func newTestAnalyzer(t *testing.T, cfg Config) *Analyzer {
	t.Helper()

	a, err := New(cfg, WithEngine(compute.CPU()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return a
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	res, err := a.Analyze(context.Background(), nil, 48000)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Analyze() error = %v, want ErrEmptyInput", err)
	}
	if res != nil {
		t.Fatal("Analyze() result != nil on error")
	}
}

func TestAnalyzeRejectsBadRate(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	for _, rate := range []float64{0, -48000} {
		res, err := a.Analyze(context.Background(), []float64{1, 2, 3}, rate)
		if !errors.Is(err, signal.ErrRate) {
			t.Fatalf("Analyze(rate=%g) error = %v, want ErrRate", rate, err)
		}
		if res != nil {
			t.Fatal("Analyze() result != nil on error")
		}
	}
}

func TestAnalyzeResultShape(t *testing.T) {
	cfg := Config{
		WindowKind:    window.KindHann,
		WindowSize:    256,
		Overlap:       0.5,
		TransformSize: 512,
	}
	a := newTestAnalyzer(t, cfg)

	samples := testutil.Sine(1000, 8000, 440, 1)
	res, err := a.Analyze(context.Background(), samples, 8000)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	bins := 512/2 + 1
	if len(res.Frequencies) != bins || len(res.Magnitudes) != bins ||
		len(res.Phases) != bins || len(res.PSD) != bins {
		t.Fatalf("spectrum lengths = %d/%d/%d/%d, want %d",
			len(res.Frequencies), len(res.Magnitudes), len(res.Phases), len(res.PSD), bins)
	}

	if res.Frames != 6 {
		t.Errorf("Frames = %d, want 6", res.Frames)
	}
	if res.BinWidth != 8000.0/512.0 {
		t.Errorf("BinWidth = %g, want %g", res.BinWidth, 8000.0/512.0)
	}
	if res.WindowKind != window.KindHann {
		t.Errorf("WindowKind = %v, want hann", res.WindowKind)
	}
	if len(res.Envelope) != len(samples) {
		t.Errorf("len(Envelope) = %d, want %d", len(res.Envelope), len(samples))
	}

	for _, k := range []int{0, 1, 100, bins - 1} {
		want := float64(k) * 8000.0 / 512.0
		if res.Frequencies[k] != want {
			t.Errorf("Frequencies[%d] = %g, want %g", k, res.Frequencies[k], want)
		}
	}
}

func TestAnalyzeSineRoundTrip(t *testing.T) {
	const (
		rate = 48000.0
		freq = 440.0
		amp  = 0.8
	)

	cfg := Config{
		WindowKind:    window.KindHann,
		WindowSize:    4096,
		Overlap:       0.5,
		TransformSize: 8192,
	}
	a := newTestAnalyzer(t, cfg)

	samples := testutil.Sine(48000, rate, freq, amp)
	res, err := a.Analyze(context.Background(), samples, rate)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	binWidth := rate / 8192
	if d := math.Abs(res.Fundamental.Frequency - freq); d > binWidth {
		t.Errorf("Fundamental.Frequency = %g, want %g +- %g", res.Fundamental.Frequency, freq, binWidth)
	}
	if d := math.Abs(res.Fundamental.Amplitude-amp) / amp; d > 0.05 {
		t.Errorf("Fundamental.Amplitude = %g, want %g +- 5%%", res.Fundamental.Amplitude, amp)
	}
	if res.THDPercent >= 1 {
		t.Errorf("THDPercent = %g, want < 1 for a pure tone", res.THDPercent)
	}
}

func TestAnalyzeExactBinTone(t *testing.T) {
	// 468.75 Hz sits exactly on bin 80 of an 8192-point transform at 48 kHz,
	// so the tone completes 80 full cycles per frame and nothing leaks.
	const (
		rate = 48000.0
		freq = 468.75
	)

	cfg := Config{
		WindowKind:    window.KindHann,
		WindowSize:    8192,
		Overlap:       0.5,
		TransformSize: 8192,
	}
	a := newTestAnalyzer(t, cfg)

	samples := testutil.Sine(8192, rate, freq, 1)
	res, err := a.Analyze(context.Background(), samples, rate)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.Frames != 1 {
		t.Errorf("Frames = %d, want 1", res.Frames)
	}
	testutil.RequireNear(t, "Fundamental.Frequency", res.Fundamental.Frequency, freq, 1)
	testutil.RequireNear(t, "Fundamental.Amplitude", res.Fundamental.Amplitude, 1, 0.01)
	if len(res.Harmonics) != 1 {
		t.Errorf("len(Harmonics) = %d, want 1 (fundamental only)", len(res.Harmonics))
	}
	if res.THDPercent != 0 {
		t.Errorf("THDPercent = %g, want 0", res.THDPercent)
	}
}

func TestAnalyzeHalfBinStraddle(t *testing.T) {
	// Worst case for bin placement: the tone halfway between two bins. The
	// refined frequency must still land within one bin width; the amplitude
	// estimate is not asserted here, parabolic interpolation through a hann
	// spectrum underestimates it at this offset.
	const rate = 48000.0

	cfg := Config{
		WindowKind:    window.KindHann,
		WindowSize:    4096,
		Overlap:       0.5,
		TransformSize: 8192,
	}
	a := newTestAnalyzer(t, cfg)

	binWidth := rate / 8192
	freq := 80.5 * binWidth

	samples := testutil.Sine(48000, rate, freq, 1)
	res, err := a.Analyze(context.Background(), samples, rate)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if d := math.Abs(res.Fundamental.Frequency - freq); d > binWidth {
		t.Errorf("Fundamental.Frequency = %g, want %g +- %g", res.Fundamental.Frequency, freq, binWidth)
	}
}

func TestAnalyzeTwoToneTHD(t *testing.T) {
	// 100 Hz fundamental plus a second harmonic at 10% amplitude: THD is 10%
	// up to refinement error.
	const rate = 48000.0

	cfg := Config{
		WindowKind:    window.KindHann,
		WindowSize:    8192,
		Overlap:       0.5,
		TransformSize: 8192,
	}
	a := newTestAnalyzer(t, cfg)

	samples := testutil.Mix(
		testutil.Sine(48000, rate, 100, 1),
		testutil.Sine(48000, rate, 200, 0.1),
	)

	res, err := a.Analyze(context.Background(), samples, rate)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	binWidth := rate / 8192
	if d := math.Abs(res.Fundamental.Frequency - 100); d > binWidth {
		t.Errorf("Fundamental.Frequency = %g, want 100 +- %g", res.Fundamental.Frequency, binWidth)
	}
	if len(res.Harmonics) != 2 {
		t.Fatalf("len(Harmonics) = %d, want 2", len(res.Harmonics))
	}
	if d := math.Abs(res.Harmonics[1].Frequency - 200); d > binWidth {
		t.Errorf("Harmonics[1].Frequency = %g, want 200 +- %g", res.Harmonics[1].Frequency, binWidth)
	}
	if res.THDPercent < 9 || res.THDPercent > 11 {
		t.Errorf("THDPercent = %g, want 10 +- 1", res.THDPercent)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	res, err := a.Analyze(context.Background(), make([]float64, 4096), 48000)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.Fundamental != (Peak{}) {
		t.Errorf("Fundamental = %+v, want zero Peak", res.Fundamental)
	}
	if len(res.Harmonics) != 0 {
		t.Errorf("len(Harmonics) = %d, want 0", len(res.Harmonics))
	}
	if res.THDPercent != 0 {
		t.Errorf("THDPercent = %g, want 0", res.THDPercent)
	}
	if len(res.Magnitudes) != 4096/2+1 {
		t.Errorf("len(Magnitudes) = %d, want %d", len(res.Magnitudes), 4096/2+1)
	}
	for i, v := range res.Envelope {
		if v != 0 {
			t.Fatalf("Envelope[%d] = %g, want 0", i, v)
		}
	}
}

func TestAnalyzeShortInput(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	samples := testutil.Sine(100, 48000, 1000, 1)
	res, err := a.Analyze(context.Background(), samples, 48000)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.Frames != 1 {
		t.Errorf("Frames = %d, want 1 for input shorter than the window", res.Frames)
	}
	if len(res.Envelope) != 100 {
		t.Errorf("len(Envelope) = %d, want 100", len(res.Envelope))
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := a.Analyze(ctx, testutil.Sine(4096, 48000, 440, 1), 48000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Fatal("Analyze() result != nil after cancellation")
	}
}

func TestAnalyzeEnvelopeAM(t *testing.T) {
	// Amplitude modulation with every component on an integer cycle count:
	// the circular Hilbert transform is exact and the envelope must recover
	// the modulator.
	const (
		rate    = 4096.0
		carrier = 512.0
		modFreq = 8.0
	)

	samples := make([]float64, 4096)
	for i := range samples {
		ti := float64(i) / rate
		m := 0.6 + 0.3*math.Cos(2*math.Pi*modFreq*ti)
		samples[i] = m * math.Sin(2*math.Pi*carrier*ti)
	}

	a := newTestAnalyzer(t, DefaultConfig())

	res, err := a.Analyze(context.Background(), samples, rate)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for i, v := range res.Envelope {
		want := 0.6 + 0.3*math.Cos(2*math.Pi*modFreq*float64(i)/rate)
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("Envelope[%d] = %g, want %g", i, v, want)
		}
	}
}

func TestAnalyzeEnvelopeSmoothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnvelopeSmoothing = 9
	a := newTestAnalyzer(t, cfg)

	samples := testutil.Sine(4096, 4096, 512, 1)
	res, err := a.Analyze(context.Background(), samples, 4096)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// A pure tone has a flat envelope; averaging must not disturb it.
	testutil.RequireSliceNear(t, res.Envelope, testutil.DC(1, len(samples)), 1e-9)
}

func TestMovingAverage(t *testing.T) {
	out := movingAverage([]float64{0, 0, 0, 9, 0, 0, 0}, 3)
	testutil.RequireSliceNear(t, out, []float64{0, 0, 3, 3, 3, 0, 0}, 1e-12)

	// Edges clamp the box instead of averaging in missing samples.
	out = movingAverage([]float64{6, 0, 0}, 3)
	testutil.RequireSliceNear(t, out, []float64{3, 2, 0}, 1e-12)
}

func BenchmarkAnalyze(b *testing.B) {
	sizes := []int{4096, 16384, 65536}

	for _, n := range sizes {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			a, err := New(DefaultConfig(), WithEngine(compute.CPU()))
			if err != nil {
				b.Fatalf("New() error = %v", err)
			}

			samples := testutil.Sine(n, 48000, 440, 1)
			ctx := context.Background()

			b.ReportAllocs()
			b.SetBytes(int64(8 * n))
			b.ResetTimer()

			for range b.N {
				if _, err := a.Analyze(ctx, samples, 48000); err != nil {
					b.Fatalf("Analyze() error = %v", err)
				}
			}
		})
	}
}
