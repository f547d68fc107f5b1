package law

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across packages.
var (
	ErrParameter       = errors.New("law: invalid parameter")
	ErrUnsupportedKind = errors.New("law: unsupported kind")
)

// ParameterError reports a missing or out-of-range parameter.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Reason == "required" {
		return fmt.Sprintf("law: parameter %q is required", e.Name)
	}
	return fmt.Sprintf("law: parameter %q %s: got %v", e.Name, e.Reason, e.Value)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrParameter
}

// UnsupportedKindError reports an unknown kind or unregistered custom law.
type UnsupportedKindError struct {
	Kind Kind
	Name string
}

func (e *UnsupportedKindError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("law: unsupported kind %q", e.Name)
	}
	return fmt.Sprintf("law: unsupported kind %d", int(e.Kind))
}

func (e *UnsupportedKindError) Is(target error) bool {
	return target == ErrUnsupportedKind
}
