package session

import (
	"errors"
	"time"
)

// State is the session lifecycle state.
type State string

const (
	StateRunning        State = "running"
	StateCompleted      State = "completed"
	StateCircuitTripped State = "circuit_tripped"
	StateInterrupted    State = "interrupted"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidTransitions defines allowed state transitions. All states other
// than Running are terminal.
var ValidTransitions = map[State][]State{
	StateRunning: {StateCompleted, StateCircuitTripped, StateInterrupted},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	validTargets, ok := ValidTransitions[from]
	if !ok {
		return false
	}

	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// Transition represents a state change with metadata.
type Transition struct {
	From      State
	To        State
	Reason    string
	Timestamp time.Time
}

// NewTransition creates a new transition record.
func NewTransition(from, to State, reason string) Transition {
	return Transition{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsValid returns true if this transition is allowed by the state machine.
func (t Transition) IsValid() bool {
	return CanTransition(t.From, t.To)
}

// Terminal reports whether a state has no outgoing transitions.
func Terminal(s State) bool {
	return len(ValidTransitions[s]) == 0
}
