package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned by a selection policy when no source is
// selectable and none will become selectable again this session.
var ErrExhausted = errors.New("selection exhausted")

// ErrQuotaExhausted is the window-relative variant: every source is
// over quota right now, but selection can resume once the rolling
// window moves on. It wraps ErrExhausted so callers that do not care
// about the distinction keep working.
var ErrQuotaExhausted = fmt.Errorf("%w for the current window", ErrExhausted)

// RunModeKind distinguishes the two termination criteria.
type RunModeKind string

const (
	RunCountBound    RunModeKind = "count"
	RunDurationBound RunModeKind = "duration"
)

// RunMode is the termination criterion for a session, fixed at start.
type RunMode struct {
	Kind     RunModeKind
	Count    int           // submissions target when Kind == RunCountBound
	Duration time.Duration // wall-clock budget when Kind == RunDurationBound
}

// CountBound builds a run mode that stops after n submissions.
func CountBound(n int) RunMode {
	return RunMode{Kind: RunCountBound, Count: n}
}

// DurationBound builds a run mode that stops once elapsed >= d.
func DurationBound(d time.Duration) RunMode {
	return RunMode{Kind: RunDurationBound, Duration: d}
}

func (m RunMode) String() string {
	if m.Kind == RunCountBound {
		return fmt.Sprintf("count(%d)", m.Count)
	}
	return fmt.Sprintf("duration(%s)", m.Duration)
}

// TerminationReason records why a session left the Running state.
type TerminationReason string

const (
	TerminationCompleted      TerminationReason = "completed"
	TerminationCircuitTripped TerminationReason = "circuit_tripped"
	TerminationInterrupted    TerminationReason = "interrupted"
)

// Area is a pickup region with its store locations, as supplied by
// discovery or embedded configuration. Immutable for a session.
type Area struct {
	Name   string   `yaml:"name"`
	Stores []string `yaml:"stores"`
}
