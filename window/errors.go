package window

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind matches window-kind parse failures.
	ErrUnknownKind = errors.New("window: unknown kind")

	errEmptyCoeffs      = errors.New("window: coefficients must not be empty")
	errZeroCoherentGain = errors.New("window: coherent gain is zero")
)

// UnknownKindError reports an unrecognized window name.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("window: unknown kind %q (want rectangular, hann, hamming or blackman)", e.Name)
}

func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}
