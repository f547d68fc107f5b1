// Package analyze implements the spectral analysis pipeline: windowed frames,
// Welch-averaged magnitude and power spectral density, fundamental detection
// with parabolic refinement, harmonic extraction with THD, and the Hilbert
// envelope. Analyses run through a compute engine and honor context
// cancellation at frame boundaries.
package analyze

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/google/uuid"

	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/logging"
	"github.com/cwbudde/signalyzer/signal"
	"github.com/cwbudde/signalyzer/window"
)

type options struct {
	engine compute.Engine
	log    logging.Logger
	hub    *event.Hub
	newID  func() string
}

// Option configures an Analyzer or Runner.
type Option func(*options)

// WithEngine sets the compute engine. Defaults to compute.Default().
func WithEngine(e compute.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHub attaches an event hub; the Runner publishes AnalysisComplete
// through it.
func WithHub(h *event.Hub) Option {
	return func(o *options) {
		o.hub = h
	}
}

// WithIDs replaces the session ID source, letting tests inject deterministic
// IDs. Defaults to random UUIDs.
func WithIDs(next func() string) Option {
	return func(o *options) {
		o.newID = next
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.engine == nil {
		o.engine = compute.Default()
	}
	if o.log == nil {
		o.log = logging.L()
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}

	return o
}

// Analyzer runs the spectral pipeline for one normalized configuration.
// Safe for concurrent use is NOT guaranteed; create one Analyzer per
// goroutine or serialize calls.
type Analyzer struct {
	cfg    Config
	engine compute.Engine
	log    logging.Logger
	meta   window.Metadata

	coeffs   []float64
	winSum   float64 // sum of window coefficients
	winSqSum float64 // sum of squared window coefficients
}

// New creates an Analyzer. The configuration is normalized (defaults filled,
// transform size rounded up to a power of two) before validation.
func New(cfg Config, opts ...Option) (*Analyzer, error) {
	norm := NormalizeConfig(cfg)
	if err := norm.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	if cfg.TransformSize != 0 && norm.TransformSize != cfg.TransformSize {
		o.log.Debug("transform size rounded up", logging.Fields{
			"requested": cfg.TransformSize,
			"used":      norm.TransformSize,
		})
	}

	coeffs := window.Generate(norm.WindowKind, norm.WindowSize)

	var sum, sumSq float64
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}

	return &Analyzer{
		cfg:      norm,
		engine:   o.engine,
		log:      o.log,
		meta:     window.Info(norm.WindowKind),
		coeffs:   coeffs,
		winSum:   sum,
		winSqSum: sumSq,
	}, nil
}

// Config returns the normalized configuration the analyzer runs with.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze runs the full pipeline over the samples. Cancelling ctx aborts at
// the next frame boundary with the context error and no partial result.
func (a *Analyzer) Analyze(ctx context.Context, samples []float64, sampleRate float64) (*Result, error) {
	if len(samples) == 0 {
		return nil, &EmptyInputError{}
	}
	if sampleRate <= 0 {
		return nil, &signal.RateError{SampleRate: sampleRate}
	}

	w := a.cfg.WindowSize
	size := a.cfg.TransformSize
	bins := size/2 + 1

	hop := max(1, int(math.Round(float64(w)*(1-a.cfg.Overlap))))

	frames := 1
	if len(samples) >= w {
		frames = 1 + (len(samples)-w)/hop
	}

	frameBuf := make([]float64, w)
	spec := make([]complex128, bins)
	powerSum := make([]float64, bins)
	phases := make([]float64, bins)

	for f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := f * hop
		end := min(start+w, len(samples))
		n := copy(frameBuf, samples[start:end])
		for i := n; i < w; i++ {
			frameBuf[i] = 0
		}

		if err := a.engine.WindowedMultiply(frameBuf, frameBuf, a.coeffs); err != nil {
			return nil, fmt.Errorf("analyze: window frame %d: %w", f, err)
		}
		if err := a.engine.TransformForward(spec, frameBuf); err != nil {
			return nil, fmt.Errorf("analyze: transform frame %d: %w", f, err)
		}

		for k, x := range spec {
			powerSum[k] += real(x)*real(x) + imag(x)*imag(x)
		}

		// Welch averaging destroys phase; the first frame's phase is kept.
		if f == 0 {
			for k, x := range spec {
				phases[k] = cmplx.Phase(x)
			}
		}
	}

	binWidth := sampleRate / float64(size)
	res := &Result{
		Frequencies: make([]float64, bins),
		Magnitudes:  make([]float64, bins),
		Phases:      phases,
		PSD:         make([]float64, bins),
		Frames:      frames,
		WindowKind:  a.cfg.WindowKind,
		BinWidth:    binWidth,
	}

	// One-sided spectra: interior bins carry the mirrored negative
	// frequencies, DC and Nyquist are their own mirror.
	nf := float64(frames)
	psdScale := 1 / (sampleRate * a.winSqSum)
	magScale := 2 / a.winSum

	for k := range bins {
		meanPower := powerSum[k] / nf
		m := math.Sqrt(meanPower) * magScale
		p := meanPower * psdScale

		if k > 0 && k < bins-1 {
			p *= 2
		} else {
			m /= 2
		}

		res.Frequencies[k] = float64(k) * binWidth
		res.Magnitudes[k] = m
		res.PSD[k] = p
	}

	a.detectComponents(res, sampleRate)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := a.envelope(samples)
	if err != nil {
		return nil, err
	}
	res.Envelope = env

	return res, nil
}

// detectComponents locates the fundamental and its harmonics and fills the
// peak fields of the result.
func (a *Analyzer) detectComponents(res *Result, sampleRate float64) {
	mags := res.Magnitudes
	bins := len(mags)
	binWidth := res.BinWidth

	lo := clampInt(int(math.Round(a.cfg.FundamentalRange[0]/binWidth)), 1, bins-1)
	hi := clampInt(int(math.Round(a.cfg.FundamentalRange[1]/binWidth)), lo, bins-1)

	peakBin := lo
	for k := lo + 1; k <= hi; k++ {
		if mags[k] > mags[peakBin] {
			peakBin = k
		}
	}

	if mags[peakBin] < a.cfg.DetectionThreshold {
		// Nothing above the floor; the spectra remain valid without peaks.
		return
	}

	fund := refinePeak(mags, peakBin, binWidth)

	width := a.meta.FirstMinimumBins
	if width*2 > peakBin {
		width = peakBin / 2
	}

	harmonics := []Peak{fund}
	sumSq := 0.0

	for n := 2; len(harmonics) < a.cfg.MaxHarmonics; n++ {
		target := fund.Frequency * float64(n)
		if target > sampleRate/2 {
			break
		}

		bin := int(math.Round(target / binWidth))
		if bin >= bins {
			break
		}

		sLo := max(bin-width, 1)
		sHi := min(bin+width, bins-1)

		best := sLo
		for k := sLo + 1; k <= sHi; k++ {
			if mags[k] > mags[best] {
				best = k
			}
		}

		p := refinePeak(mags, best, binWidth)
		if p.Amplitude < a.cfg.DetectionThreshold*fund.Amplitude {
			continue
		}

		harmonics = append(harmonics, p)
		sumSq += p.Amplitude * p.Amplitude
	}

	res.Fundamental = fund
	res.Harmonics = harmonics
	res.THDPercent = 100 * math.Sqrt(sumSq) / fund.Amplitude
}

// refinePeak fits a parabola through the bin and its two neighbors to place
// the peak between bins. At the spectrum edges the bin itself is returned.
func refinePeak(mags []float64, bin int, binWidth float64) Peak {
	y0 := mags[bin]
	if bin <= 0 || bin >= len(mags)-1 {
		return Peak{Frequency: float64(bin) * binWidth, Amplitude: y0}
	}

	ym := mags[bin-1]
	yp := mags[bin+1]

	den := ym - 2*y0 + yp
	if den == 0 {
		return Peak{Frequency: float64(bin) * binWidth, Amplitude: y0}
	}

	delta := 0.5 * (ym - yp) / den
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}

	return Peak{
		Frequency: (float64(bin) + delta) * binWidth,
		Amplitude: y0 - 0.25*(ym-yp)*delta,
	}
}

// envelope computes the instantaneous amplitude through the analytic signal:
// forward transform, positive frequencies doubled, negative zeroed, inverse
// transform, magnitude.
func (a *Analyzer) envelope(samples []float64) ([]float64, error) {
	size := nextPowerOfTwo(len(samples))
	if size < 2 {
		size = 2
	}

	half := make([]complex128, size/2+1)
	if err := a.engine.TransformForward(half, samples); err != nil {
		return nil, fmt.Errorf("analyze: envelope transform: %w", err)
	}

	full := make([]complex128, size)
	full[0] = half[0]
	for k := 1; k < size/2; k++ {
		full[k] = 2 * half[k]
	}
	full[size/2] = half[size/2]

	analytic := make([]complex128, size)
	if err := a.engine.TransformInverse(analytic, full); err != nil {
		return nil, fmt.Errorf("analyze: envelope inverse: %w", err)
	}

	env := make([]float64, len(samples))
	for i := range env {
		env[i] = cmplx.Abs(analytic[i])
	}

	if a.cfg.EnvelopeSmoothing > 1 {
		env = movingAverage(env, a.cfg.EnvelopeSmoothing)
	}

	return env, nil
}

// movingAverage smooths with a centered box, clamped at the edges.
func movingAverage(in []float64, width int) []float64 {
	half := width / 2
	out := make([]float64, len(in))

	for i := range in {
		lo := max(i-half, 0)
		hi := min(i+half, len(in)-1)

		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += in[j]
		}

		out[i] = sum / float64(hi-lo+1)
	}

	return out
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}

	return val
}
