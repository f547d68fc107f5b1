package signal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/law"
	"github.com/cwbudde/signalyzer/logging"
	"github.com/cwbudde/signalyzer/ring"
)

// StreamConfig fixes the timing of a streaming producer.
type StreamConfig struct {
	SampleRate float64
	FrameLen   int
}

// Streamer produces frames of a law in real time, one ring write per tick.
// The absolute sample index keeps growing across frames, so the streamed
// waveform is seamless. Exactly one goroutine produces; the ring absorbs any
// number of readers, and a full ring overwrites instead of blocking.
type Streamer struct {
	lw     law.Law
	cfg    StreamConfig
	buf    *ring.Buffer
	engine compute.Engine
	log    logging.Logger
	hub    *event.Hub

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewStreamer creates a streaming producer for lw. The configured frame
// length must match the ring's.
func NewStreamer(lw law.Law, cfg StreamConfig, buf *ring.Buffer, opts ...Option) (*Streamer, error) {
	if cfg.SampleRate <= 0 {
		return nil, &RateError{SampleRate: cfg.SampleRate}
	}
	if cfg.FrameLen < 1 {
		return nil, fmt.Errorf("signal: frame length must be >= 1: got %d", cfg.FrameLen)
	}
	if buf == nil {
		return nil, fmt.Errorf("signal: streamer needs a ring buffer")
	}
	if cfg.FrameLen != buf.FrameLen() {
		return nil, fmt.Errorf("signal: frame length %d does not match ring frame length %d", cfg.FrameLen, buf.FrameLen())
	}

	o := applyOptions(opts)
	warnAliasing(o.log, lw, cfg.SampleRate)

	return &Streamer{
		lw:     lw,
		cfg:    cfg,
		buf:    buf,
		engine: o.engine,
		log:    o.log,
		hub:    o.hub,
	}, nil
}

// Start launches the producer goroutine. A Streamer runs at most once;
// calling Start again returns an error.
func (s *Streamer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("signal: streamer already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.started = true
	run, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, run)

	return nil
}

// Stop halts production and waits for the producer goroutine to exit.
// Safe to call more than once.
func (s *Streamer) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Err reports the terminal status after the streamer stopped: nil on a clean
// Stop, the context error when the caller's context ended the stream, or the
// failure that aborted it.
func (s *Streamer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *Streamer) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// run ticks once per frame interval. Frames are always produced whole;
// cancellation is observed between ticks only, so a cancelled stream never
// leaves a partial frame in the ring.
func (s *Streamer) run(parent, ctx context.Context) {
	defer close(s.done)

	interval := time.Duration(float64(s.cfg.FrameLen) / s.cfg.SampleRate * float64(time.Second))
	if interval <= 0 {
		interval = time.Nanosecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Debug("streaming started", logging.Fields{
		"law":       s.lw.Kind().String(),
		"rate":      s.cfg.SampleRate,
		"frame_len": s.cfg.FrameLen,
		"interval":  interval.String(),
	})

	times := make([]float64, s.cfg.FrameLen)
	samples := make([]float64, s.cfg.FrameLen)

	var index uint64
	for {
		select {
		case <-ctx.Done():
			// parent.Err() distinguishes a clean Stop (nil) from caller
			// cancellation (Canceled / DeadlineExceeded).
			s.setErr(parent.Err())
			return
		case <-ticker.C:
			if err := s.emit(index, times, samples); err != nil {
				s.setErr(err)
				s.log.Error(err, "streaming aborted")
				return
			}
			index += uint64(s.cfg.FrameLen)
		}
	}
}

// emit evaluates one frame starting at the absolute sample index and writes
// it to the ring. The ring copies the payload, so the scratch slices are
// reused across ticks.
func (s *Streamer) emit(index uint64, times, samples []float64) error {
	rate := s.cfg.SampleRate
	for i := range times {
		times[i] = float64(index+uint64(i)) / rate
	}

	if err := s.engine.EvaluateSeries(samples, times, s.lw.Eval); err != nil {
		return fmt.Errorf("signal: stream frame at sample %d: %w", index, err)
	}

	start := time.Duration(float64(index) / rate * float64(time.Second))

	seq, err := s.buf.Write(start, samples)
	if err != nil {
		return fmt.Errorf("signal: stream frame at sample %d: %w", index, err)
	}

	if s.hub != nil {
		_ = s.hub.Publish(event.FrameReady{Seq: seq, Start: start, FrameLen: len(samples)})
	}

	return nil
}
