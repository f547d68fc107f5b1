package analyze

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across packages.
var (
	ErrConfig     = errors.New("analyze: invalid configuration")
	ErrEmptyInput = errors.New("analyze: empty input")
	ErrClosed     = errors.New("analyze: runner closed")
)

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("analyze: config %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// EmptyInputError reports an analysis request without samples.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "analyze: empty input"
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}
