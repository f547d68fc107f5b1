package compute

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy matches strategy parse failures.
	ErrUnknownStrategy = errors.New("compute: unknown strategy")

	errLengthMismatch = errors.New("compute: slice lengths must match")
	errNilEval        = errors.New("compute: eval function must not be nil")
)

// UnknownStrategyError reports an unrecognized strategy name.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("compute: unknown strategy %q (want auto, gpu or cpu)", e.Name)
}

func (e *UnknownStrategyError) Is(target error) bool {
	return target == ErrUnknownStrategy
}

// TransformSizeError reports an unusable transform size.
type TransformSizeError struct {
	Size   int
	Reason string
}

func (e *TransformSizeError) Error() string {
	return fmt.Sprintf("compute: transform size %d %s", e.Size, e.Reason)
}

func validateTransformSize(size, inputLen int) error {
	if size < 2 {
		return &TransformSizeError{Size: size, Reason: "must be >= 2"}
	}
	if size&(size-1) != 0 {
		return &TransformSizeError{Size: size, Reason: "must be a power of two"}
	}
	if size < inputLen {
		return &TransformSizeError{Size: size, Reason: fmt.Sprintf("smaller than input length %d", inputLen)}
	}
	return nil
}
