package analyze

import (
	"sync"
	"time"
)

// Status is the lifecycle state of an analysis session.
type Status int

const (
	// StatusCreated marks a session accepted but not yet picked up by a
	// worker.
	StatusCreated Status = iota

	// StatusRunning marks a session whose pipeline is executing.
	StatusRunning

	// StatusComplete marks a successful session; Result is set.
	StatusComplete

	// StatusCancelled marks a session aborted through its context.
	StatusCancelled

	// StatusFailed marks a session whose pipeline returned an error.
	StatusFailed
)

// String returns the canonical status name.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled || s == StatusFailed
}

// Session tracks one queued analysis from submission to its terminal state.
// ID, SignalID, Config and CreatedAt are immutable after creation; the
// mutable state is guarded and frozen once the session turns terminal.
type Session struct {
	ID        string
	SignalID  string
	Config    Config
	CreatedAt time.Time

	mu          sync.Mutex
	status      Status
	result      *Result
	err         error
	completedAt time.Time
	done        chan struct{}
}

func newSession(id, signalID string, cfg Config) *Session {
	return &Session{
		ID:        id,
		SignalID:  signalID,
		Config:    cfg,
		CreatedAt: time.Now(),
		status:    StatusCreated,
		done:      make(chan struct{}),
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Result returns the analysis result. It is nil unless the session is
// complete.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Err returns the terminal error of a failed or cancelled session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// CompletedAt returns when the session turned terminal, or the zero time.
func (s *Session) CompletedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.completedAt
}

// Done returns a channel closed when the session turns terminal.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) markRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusCreated {
		s.status = StatusRunning
	}
}

// finish moves the session to a terminal state exactly once. Later calls are
// ignored, so a worker and a cancelled submit cannot both win.
func (s *Session) finish(st Status, res *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return
	}

	s.status = st
	s.err = err
	s.completedAt = time.Now()

	// A session only carries a result when it completed.
	if st == StatusComplete {
		s.result = res
	}

	close(s.done)
}

// Clone returns a deep snapshot of the session for storage. The clone is
// detached: its done channel reflects the state at snapshot time and never
// transitions afterwards.
func (s *Session) Clone() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Session{
		ID:          s.ID,
		SignalID:    s.SignalID,
		Config:      s.Config,
		CreatedAt:   s.CreatedAt,
		status:      s.status,
		result:      s.result.Clone(),
		err:         s.err,
		completedAt: s.completedAt,
		done:        make(chan struct{}),
	}

	if c.status.Terminal() {
		close(c.done)
	}

	return c
}
