package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/logging"
	"github.com/cwbudde/signalyzer/signal"
)

// SignalLookup resolves a SignalReady payload to the generated signal.
type SignalLookup func(id string) (*signal.SignalData, bool)

// SessionLookup resolves an AnalysisComplete payload to its session,
// typically (*analyze.Runner).Session.
type SessionLookup func(id string) (*analyze.Session, bool)

// Recorder subscribes to the hub and persists signals and finished sessions
// through a Store. A backend reporting ErrUnavailable, or an ID the lookups
// cannot resolve, drops the record with a warning instead of failing the
// pipeline that emitted the event.
type Recorder struct {
	store    Store
	log      logging.Logger
	signals  SignalLookup
	sessions SessionLookup

	drops atomic.Uint64
	subs  []*event.Subscription
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l logging.Logger) RecorderOption {
	return func(r *Recorder) {
		r.log = l
	}
}

// WithSignalLookup enables recording of SignalReady events.
func WithSignalLookup(fn SignalLookup) RecorderOption {
	return func(r *Recorder) {
		r.signals = fn
	}
}

// WithSessionLookup enables recording of AnalysisComplete events.
func WithSessionLookup(fn SessionLookup) RecorderOption {
	return func(r *Recorder) {
		r.sessions = fn
	}
}

// NewRecorder wires a recorder to the hub. Only event types with a
// configured lookup are subscribed.
func NewRecorder(st Store, hub *event.Hub, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: st}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.log == nil {
		r.log = logging.L()
	}

	if hub == nil {
		return r
	}

	if r.signals != nil {
		r.subs = append(r.subs, hub.Subscribe(event.TypeSignalReady, "recorder", r.onSignalReady))
	}
	if r.sessions != nil {
		r.subs = append(r.subs, hub.Subscribe(event.TypeAnalysisComplete, "recorder", r.onAnalysisComplete))
	}

	return r
}

// Drops reports how many records could not be persisted.
func (r *Recorder) Drops() uint64 {
	return r.drops.Load()
}

// Close detaches the recorder from the hub.
func (r *Recorder) Close() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Recorder) onSignalReady(ev event.Event) error {
	ready, ok := ev.(event.SignalReady)
	if !ok {
		return nil
	}

	sig, ok := r.signals(ready.SignalID)
	if !ok {
		r.dropUnresolved("signal", ready.SignalID)
		return nil
	}

	return r.persist("signal", sig.ID, func(ctx context.Context) error {
		return r.store.SaveSignal(ctx, sig)
	})
}

func (r *Recorder) onAnalysisComplete(ev event.Event) error {
	done, ok := ev.(event.AnalysisComplete)
	if !ok {
		return nil
	}

	s, ok := r.sessions(done.SessionID)
	if !ok {
		r.dropUnresolved("session", done.SessionID)
		return nil
	}

	return r.persist("session", s.ID, func(ctx context.Context) error {
		return r.store.SaveSession(ctx, s)
	})
}

func (r *Recorder) dropUnresolved(kind, id string) {
	r.drops.Add(1)
	r.log.Warn("record dropped, id not resolvable", logging.Fields{
		"kind": kind,
		"id":   id,
	})
}

// persist saves one record. Unavailability is absorbed: the record is
// dropped with a warning and the subscriber reports success, so publishers
// keep running while storage is down.
func (r *Recorder) persist(kind, id string, save func(context.Context) error) error {
	err := save(context.Background())
	if err == nil {
		return nil
	}

	r.drops.Add(1)

	if errors.Is(err, ErrUnavailable) {
		r.log.Warn("storage unavailable, record dropped", logging.Fields{
			"kind": kind,
			"id":   id,
		})

		return nil
	}

	return fmt.Errorf("store: record %s %q: %w", kind, id, err)
}
