package signal

import (
	"errors"
	"fmt"
)

// ErrRate matches all sampling-parameter errors via errors.Is.
var ErrRate = errors.New("signal: invalid sampling parameters")

// RateError reports a rejected sample rate / duration pair.
type RateError struct {
	SampleRate float64
	Duration   float64
}

func (e *RateError) Error() string {
	if e.SampleRate <= 0 {
		return fmt.Sprintf("signal: sample rate must be > 0: got %g", e.SampleRate)
	}

	return fmt.Sprintf("signal: duration must be >= 0: got %g", e.Duration)
}

func (e *RateError) Is(target error) bool {
	return target == ErrRate
}
