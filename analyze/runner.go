package analyze

import (
	"context"
	"errors"
	"sync"

	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/logging"
	"github.com/cwbudde/signalyzer/signal"
)

// Runner executes analysis sessions on a fixed pool of workers. Sessions
// queue at submission and run concurrently up to the worker count; each
// session owns its result.
type Runner struct {
	log     logging.Logger
	hub     *event.Hub
	newID   func() string
	options []Option

	tasks   chan *task
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	intake   sync.WaitGroup
	sessions map[string]*Session
}

type task struct {
	ctx     context.Context
	session *Session
	samples []float64
	rate    float64
}

// NewRunner starts a pool with the given worker count (at least one).
func NewRunner(workers int, opts ...Option) *Runner {
	workers = max(1, workers)
	o := applyOptions(opts)

	r := &Runner{
		log:      o.log,
		hub:      o.hub,
		newID:    o.newID,
		options:  []Option{WithEngine(o.engine), WithLogger(o.log)},
		tasks:    make(chan *task, workers),
		sessions: make(map[string]*Session),
	}

	r.workers.Add(workers)
	for range workers {
		go r.worker()
	}

	return r
}

// Submit validates the request, registers a session and queues it. The
// context governs both queueing and the analysis itself; cancelling it
// before a worker picks the task up cancels the session.
func (r *Runner) Submit(ctx context.Context, sig *signal.SignalData, cfg Config) (*Session, error) {
	if sig == nil || len(sig.Samples) == 0 {
		return nil, &EmptyInputError{}
	}

	norm := NormalizeConfig(cfg)
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	s := newSession(r.newID(), sig.ID, norm)
	r.sessions[s.ID] = s
	r.intake.Add(1)
	r.pending.Add(1)
	r.mu.Unlock()

	// The worker reads the samples after Submit returns; a private copy
	// keeps later caller mutations out of the analysis.
	t := &task{
		ctx:     ctx,
		session: s,
		samples: append([]float64(nil), sig.Samples...),
		rate:    sig.SampleRate,
	}

	select {
	case r.tasks <- t:
		r.intake.Done()
		return s, nil
	case <-ctx.Done():
		r.intake.Done()
		s.finish(StatusCancelled, nil, ctx.Err())
		r.pending.Done()

		return nil, ctx.Err()
	}
}

// Session returns a previously submitted session by ID.
func (r *Runner) Session(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]

	return s, ok
}

// Wait blocks until every submitted session has reached a terminal state.
func (r *Runner) Wait() {
	r.pending.Wait()
}

// Close stops intake, drains queued sessions and waits for the workers.
// Submissions after Close fail with ErrClosed. Close is idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	// In-flight submits registered before the flag flipped still need their
	// send to land before the channel can close.
	r.intake.Wait()
	close(r.tasks)
	r.workers.Wait()
}

func (r *Runner) worker() {
	defer r.workers.Done()

	for t := range r.tasks {
		r.runTask(t)
		r.pending.Done()
	}
}

func (r *Runner) runTask(t *task) {
	s := t.session

	if err := t.ctx.Err(); err != nil {
		s.finish(StatusCancelled, nil, err)
		return
	}

	s.markRunning()

	a, err := New(s.Config, r.options...)
	if err != nil {
		// The config was validated at submit; rejection here is a bug.
		s.finish(StatusFailed, nil, err)
		return
	}

	res, err := a.Analyze(t.ctx, t.samples, t.rate)
	switch {
	case err == nil:
		s.finish(StatusComplete, res, nil)
		r.publishComplete(s, res)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		s.finish(StatusCancelled, nil, err)
	default:
		r.log.Error(err, "analysis failed", logging.Fields{
			"session_id": s.ID,
			"signal_id":  s.SignalID,
		})
		s.finish(StatusFailed, nil, err)
	}
}

func (r *Runner) publishComplete(s *Session, res *Result) {
	if r.hub == nil {
		return
	}

	// Subscriber failures are logged by the hub; they do not fail the
	// session that triggered them.
	_ = r.hub.Publish(event.AnalysisComplete{
		SessionID:     s.ID,
		SignalID:      s.SignalID,
		FundamentalHz: res.Fundamental.Frequency,
		THDPercent:    res.THDPercent,
	})
}
