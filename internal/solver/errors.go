package solver

import (
	"errors"
	"fmt"
)

// ErrModeUnavailable reports that a requested mode was not resolved by
// the modal solve. Callers record the gap instead of failing the run.
var ErrModeUnavailable = errors.New("mode not resolved by solve")

// SetupError is a rejected model-setup command or an invalid resulting
// state (empty selection, singular material). It is recoverable at the
// sweep level: the run fails, the sweep continues.
type SetupError struct {
	Stage string // which setup stage rejected, e.g. "support selection"
	Err   error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("run setup failed at %s", e.Stage)
	}
	return fmt.Sprintf("run setup failed at %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Setupf builds a SetupError from a stage and format string.
func Setupf(stage, format string, args ...any) *SetupError {
	return &SetupError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// WrapSetup wraps a backend error into a SetupError, passing nil through.
func WrapSetup(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &SetupError{Stage: stage, Err: err}
}

// SolveError is a failed solve call. Same sweep-level treatment as
// SetupError.
type SolveError struct {
	Err error
}

func (e *SolveError) Error() string { return fmt.Sprintf("solve failed: %v", e.Err) }
func (e *SolveError) Unwrap() error { return e.Err }
