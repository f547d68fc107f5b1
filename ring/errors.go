package ring

import (
	"errors"
	"fmt"
)

// ErrSize matches ring sizing errors.
var ErrSize = errors.New("ring: invalid size")

// SizeError reports an unusable capacity, frame length or payload length.
type SizeError struct {
	Field string
	Value int
	Want  int
}

func (e *SizeError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("ring: %s must be %d: got %d", e.Field, e.Want, e.Value)
	}
	return fmt.Sprintf("ring: %s must be >= 1: got %d", e.Field, e.Value)
}

func (e *SizeError) Is(target error) bool {
	return target == ErrSize
}
