package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/law"
	"github.com/cwbudde/signalyzer/logging"
)

type options struct {
	engine compute.Engine
	log    logging.Logger
	hub    *event.Hub
	newID  func() string
}

// Option configures a Generator or Streamer.
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

// WithHub attaches an event hub; generation and streaming publish
// SignalReady / FrameReady through it.
func WithHub(h *event.Hub) Option {
	return func(o *options) {
		o.hub = h
	}
}

// WithIDs replaces the signal ID source, letting tests inject deterministic
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

// Generator produces SignalData from laws through a compute engine.
type Generator struct {
	engine compute.Engine
	log    logging.Logger
	hub    *event.Hub
	newID  func() string
}

// NewGenerator creates a configured batch generator.
func NewGenerator(opts ...Option) *Generator {
	o := applyOptions(opts)

	return &Generator{engine: o.engine, log: o.log, hub: o.hub, newID: o.newID}
}

// Generate evaluates lw over the requested span and returns the signal.
// The sample count is round(sampleRate*duration); duration 0 yields a valid
// empty signal. Identical inputs produce identical samples on every engine.
func (g *Generator) Generate(ctx context.Context, name string, lw law.Law, sampleRate, duration float64) (*SignalData, error) {
	if sampleRate <= 0 || duration < 0 {
		return nil, &RateError{SampleRate: sampleRate, Duration: duration}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lw = closeSweep(lw, duration)
	warnAliasing(g.log, lw, sampleRate)

	n := int(math.Round(sampleRate * duration))
	samples := make([]float64, n)

	if n > 0 {
		times := make([]float64, n)
		for i := range times {
			times[i] = float64(i) / sampleRate
		}

		if err := g.engine.EvaluateSeries(samples, times, lw.Eval); err != nil {
			return nil, fmt.Errorf("signal: generate %q: %w", name, err)
		}
	}

	sig := &SignalData{
		ID:         g.newID(),
		Name:       name,
		Law:        lw,
		SampleRate: sampleRate,
		Duration:   duration,
		Samples:    samples,
		CreatedAt:  time.Now(),
	}

	g.log.Debug("signal generated", logging.Fields{
		"id":      sig.ID,
		"name":    name,
		"law":     lw.Kind().String(),
		"rate":    sampleRate,
		"samples": n,
	})

	if g.hub != nil {
		// Subscriber failures are logged by the hub; they do not fail the
		// generation that triggered them.
		_ = g.hub.Publish(event.SignalReady{
			SignalID:   sig.ID,
			Name:       name,
			Samples:    n,
			SampleRate: sampleRate,
		})
	}

	return sig, nil
}

// closeSweep pins a chirp's sweep window to the signal duration so the law
// reaches end_frequency exactly at the end of the signal. Laws carrying an
// explicit sweep_time keep it.
func closeSweep(lw law.Law, duration float64) law.Law {
	if lw.Kind() != law.KindChirp || duration <= 0 {
		return lw
	}
	if v, ok := lw.Param(law.ParamSweepTime); ok && v > 0 {
		return lw
	}

	out, err := lw.WithParam(law.ParamSweepTime, duration)
	if err != nil {
		return lw
	}

	return out
}

// warnAliasing logs when the law's frequency content cannot be represented
// at the requested rate.
func warnAliasing(log logging.Logger, lw law.Law, sampleRate float64) {
	freq, ok := lw.Param(law.ParamFrequency)
	if !ok {
		return
	}
	if end, ok := lw.Param(law.ParamEndFrequency); ok && end > freq {
		freq = end
	}

	nyquist := sampleRate / 2
	if freq >= nyquist {
		log.Warn("frequency at or above Nyquist, signal will alias", logging.Fields{
			"frequency": freq,
			"nyquist":   nyquist,
		})
	}
}
