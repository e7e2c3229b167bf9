package matching

import "fmt"

// State is the swipe session controller state.
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// transition validates a state change. Closed is terminal.
func transition(from, to State) error {
	switch {
	case from == StateIdle && to == StateProcessing,
		from == StateProcessing && to == StateIdle,
		from == StateIdle && to == StateClosed,
		from == StateProcessing && to == StateClosed:
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
}
