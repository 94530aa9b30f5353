package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks setup problems detected before a run starts:
	// missing species, invalid domain, non-positive timestep.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrGeometry marks degenerate shapes (non-positive radius, zero-length
	// normal or axis).
	ErrGeometry = errors.New("degenerate geometry")
	// ErrStaleHandle marks access through a handle whose entity has been
	// removed.
	ErrStaleHandle = errors.New("stale handle")
	// ErrIntegration marks a non-finite position or velocity detected after
	// a step. It is fatal: the run transitions to Failed.
	ErrIntegration = errors.New("non-finite state after integration")
	// ErrInsertionSpaceExhausted is diagnostic only: an insertion boundary
	// could not place its volume budget without overlap. Insertion resumes
	// next step.
	ErrInsertionSpaceExhausted = errors.New("insertion region full")
	// ErrNotRunnable marks Run being called from the wrong driver state.
	ErrNotRunnable = errors.New("simulation not in a runnable state")
)

// StaleHandleError reports which slot and generation a failed lookup used.
// It wraps ErrStaleHandle so callers can match with errors.Is.
type StaleHandleError struct {
	Index      uint32
	Generation uint32
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("stale handle: slot %d generation %d", e.Index, e.Generation)
}

func (e *StaleHandleError) Unwrap() error { return ErrStaleHandle }
