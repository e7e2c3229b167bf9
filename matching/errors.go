package matching

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by operations on a disposed session.
	ErrSessionClosed = errors.New("matching: session closed")

	// ErrSwipeNotFound may be returned by Backend.DeleteSwipe when no decision
	// exists for the pair. The session treats it as a successful delete.
	ErrSwipeNotFound = errors.New("matching: swipe not found")

	// ErrIllegalTransition reports a state change the session never makes.
	ErrIllegalTransition = errors.New("matching: illegal state transition")
)

// FetchError reports a failed candidate retrieval (initial load or refill).
type FetchError struct {
	Op          string // "load" or "refill"
	RequesterID string
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s candidates for %s: %v", e.Op, e.RequesterID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a failed swipe commit or undo delete.
type WriteError struct {
	Op          string // "record" or "delete"
	RequesterID string
	TargetID    string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s swipe %s -> %s: %v", e.Op, e.RequesterID, e.TargetID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// GuardViolation describes an action rejected by the session guard: a swipe
// while another remote call is in flight, or a swipe/undo at a cursor
// boundary. It is never returned to callers.
type GuardViolation struct {
	Op     string
	State  State
	Reason string
}

func (g GuardViolation) Error() string {
	return fmt.Sprintf("%s ignored in state %s: %s", g.Op, g.State, g.Reason)
}

// IsRetryable reports whether err is a remote failure the user may retry.
func IsRetryable(err error) bool {
	var fe *FetchError
	var we *WriteError
	return errors.As(err, &fe) || errors.As(err, &we)
}
