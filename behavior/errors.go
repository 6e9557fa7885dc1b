package behavior

import (
	"errors"
	"fmt"
)

var (
	ErrConfig          = errors.New("behavior: invalid configuration")
	ErrNotImplemented  = errors.New("behavior: not implemented")
	ErrIncompleteSetup = errors.New("behavior: incomplete setup")
)

// ConfigError reports a problem in a boss definition or its spawn
// properties. It matches ErrConfig with errors.Is.
type ConfigError struct {
	Entity string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("behavior: %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("behavior: %s: %s: %v", e.Entity, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErr(entity, field string, format string, args ...any) error {
	return &ConfigError{Entity: entity, Field: field, Err: fmt.Errorf(format, args...)}
}

// NotImplementedError marks a boss or state whose behavior was never
// authored. Spawning it fails instead of running a half-built machine.
type NotImplementedError struct {
	Entity string
	State  StateID
	Reason string
}

func (e *NotImplementedError) Error() string {
	msg := "behavior: " + e.Entity
	if e.State != "" {
		msg += " state " + string(e.State)
	}
	msg += " is not implemented"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }

func incomplete(entity, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrIncompleteSetup, entity, fmt.Sprintf(format, args...))
}
