package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLibrary = errors.New("physim: unknown simulation library")

	ErrNilShape = errors.New("physim: body requires a collision shape")

	ErrInvalidTimeStep = errors.New("physim: time step must be finite")

	// ErrBackendFatal marks an engine invariant violation. The world that
	// produced it cannot be stepped again.
	ErrBackendFatal = errors.New("physim: backend fatal error")
)

// BackendFatalError carries the context of a fatal step.
type BackendFatalError struct {
	Step   int
	Time   float64
	Body   BodyHandle
	Reason string
}

func (e *BackendFatalError) Error() string {
	return fmt.Sprintf("%v: step %d at t=%.4f, body %d: %s", ErrBackendFatal, e.Step, e.Time, e.Body, e.Reason)
}

func (e *BackendFatalError) Unwrap() error {
	return ErrBackendFatal
}
