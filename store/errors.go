package store

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across packages.
var (
	// ErrUnavailable marks a backend that cannot currently accept or serve
	// requests. The recorder treats it as a droppable failure.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrNotFound marks a lookup for an unknown ID.
	ErrNotFound = errors.New("store: not found")
)

// NotFoundError reports which record a failed lookup asked for.
type NotFoundError struct {
	Kind string // "signal" or "session"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
