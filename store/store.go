// Package store persists generated signals and finished analysis sessions.
// The Store interface abstracts the backend; Memory is the reference
// implementation. Recorder bridges the event hub to a Store so persistence
// failures degrade gracefully instead of failing generation or analysis.
package store

import (
	"context"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/signal"
)

// Store is the persistence contract. Implementations must deep-copy on both
// save and load so callers and the backend never share mutable state.
type Store interface {
	SaveSignal(ctx context.Context, sig *signal.SignalData) error
	LoadSignal(ctx context.Context, id string) (*signal.SignalData, error)

	SaveSession(ctx context.Context, s *analyze.Session) error
	LoadSession(ctx context.Context, id string) (*analyze.Session, error)
}
