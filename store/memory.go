package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/signal"
)

// Memory is an in-memory Store keyed by record ID. Records are deep-copied
// on save and load, so no caller ever aliases stored state. Safe for
// concurrent use.
type Memory struct {
	mu       sync.RWMutex
	signals  map[string]*signal.SignalData
	sessions map[string]*analyze.Session
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		signals:  make(map[string]*signal.SignalData),
		sessions: make(map[string]*analyze.Session),
	}
}

func (m *Memory) SaveSignal(ctx context.Context, sig *signal.SignalData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sig == nil || sig.ID == "" {
		return fmt.Errorf("store: signal id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[sig.ID] = sig.Clone()

	return nil
}

func (m *Memory) LoadSignal(ctx context.Context, id string) (*signal.SignalData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	sig, ok := m.signals[id]
	m.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Kind: "signal", ID: id}
	}

	return sig.Clone(), nil
}

func (m *Memory) SaveSession(ctx context.Context, s *analyze.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.ID == "" {
		return fmt.Errorf("store: session id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()

	return nil
}

func (m *Memory) LoadSession(ctx context.Context, id string) (*analyze.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Kind: "session", ID: id}
	}

	return s.Clone(), nil
}

// Len reports the number of stored signals and sessions.
func (m *Memory) Len() (signals, sessions int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.signals), len(m.sessions)
}
