// Package session drives one bounded submission run: it asks the
// selection policy for tasks, submits them through the retry
// controller, feeds outcomes to the circuit breaker, and terminates on
// the run-mode target, a breaker trip, or an external interrupt.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/dispatcher/internal/core/breaker"
	"github.com/vietddude/dispatcher/internal/core/domain"
	"github.com/vietddude/dispatcher/internal/core/selection"
	"github.com/vietddude/dispatcher/internal/metrics"
)

// Submitter performs one task submission with retries.
// *dispatch.Controller is the production implementation.
type Submitter interface {
	Attempt(ctx context.Context, task *domain.Task) domain.Outcome
}

// Config fixes a session's behavior for its lifetime. There is no
// mid-run reconfiguration.
type Config struct {
	TaskType domain.TaskType
	Mode     domain.RunMode
	Interval time.Duration // pause between submissions

	// OnFailure is called after each failed outcome is recorded.
	// Best-effort collaborator hook (failed-task sink); may be nil.
	OnFailure func(task *domain.Task, outcome domain.Outcome)
}

// Session is a single-run state machine. Submissions are strictly
// sequential; the interrupt flag is the only asynchronous input and is
// sampled between loop steps, never mid-submission.
type Session struct {
	cfg       Config
	policy    selection.Policy
	submitter Submitter
	breaker   *breaker.Breaker
	log       *slog.Logger

	interrupted atomic.Bool

	mu    sync.Mutex
	state State
	stats Stats

	now func() time.Time
}

// New creates a session in the Running state's initial setup; the
// state machine enters Running when Run is called.
func New(cfg Config, policy selection.Policy, submitter Submitter, brk *breaker.Breaker, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:       cfg,
		policy:    policy,
		submitter: submitter,
		breaker:   brk,
		log:       log,
		state:     StateRunning,
		stats: Stats{
			RunID:      uuid.NewString(),
			TaskType:   cfg.TaskType,
			Mode:       cfg.Mode.String(),
			State:      StateRunning,
			AreaUsage:  make(map[string]int),
			StoreUsage: make(map[string]int),
		},
		now: time.Now,
	}
}

// ID returns the session's run id.
func (s *Session) ID() string {
	return s.stats.RunID
}

// Interrupt requests a graceful stop. The current submission, if any,
// still gets its outcome recorded before the session terminates.
func (s *Session) Interrupt() {
	s.interrupted.Store(true)
}

// Report returns a consistent copy of the statistics: a best-effort
// snapshot while Running, the final report once terminal.
func (s *Session) Report() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.stats.clone()
	snap.ConsecutiveFailures = s.breaker.ConsecutiveFailures()
	return snap
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the submission loop until a terminal state is reached
// and returns the final statistics. It blocks the calling goroutine.
func (s *Session) Run(ctx context.Context) Stats {
	started := s.now()
	s.mu.Lock()
	s.stats.StartedAt = started
	s.mu.Unlock()

	metrics.SessionRunning.Set(1)
	s.log.Info("session started",
		"run_id", s.stats.RunID,
		"task_type", s.cfg.TaskType,
		"mode", s.cfg.Mode.String(),
		"breaker_threshold", s.breaker.Threshold())

	reason := s.loop(ctx)
	return s.finalize(reason)
}

func (s *Session) loop(ctx context.Context) domain.TerminationReason {
	for {
		if s.stopRequested(ctx) {
			return domain.TerminationInterrupted
		}

		task, err := s.policy.Next()
		if err != nil {
			// Quota exhaustion clears once the window rolls over, so a
			// duration-bound run idles through it instead of ending early.
			if errors.Is(err, domain.ErrQuotaExhausted) && s.cfg.Mode.Kind == domain.RunDurationBound {
				if s.targetReached() {
					return domain.TerminationCompleted
				}
				s.idle(ctx)
				continue
			}
			if !errors.Is(err, domain.ErrExhausted) {
				s.log.Error("selection failed", "error", err)
			}
			return domain.TerminationCompleted
		}

		outcome := s.submitter.Attempt(ctx, task)
		s.record(task, outcome)

		tripped := s.breaker.Record(outcome)
		metrics.ConsecutiveFailures.Set(float64(s.breaker.ConsecutiveFailures()))
		if tripped {
			s.log.Error("circuit breaker tripped",
				"consecutive_failures", s.breaker.ConsecutiveFailures(),
				"threshold", s.breaker.Threshold())
			return domain.TerminationCircuitTripped
		}

		if s.targetReached() {
			return domain.TerminationCompleted
		}
		if s.stopRequested(ctx) {
			return domain.TerminationInterrupted
		}

		s.pause(ctx)
	}
}

// stopRequested samples the interrupt flag and context between loop
// steps. It is never consulted while a submission is in flight.
func (s *Session) stopRequested(ctx context.Context) bool {
	if s.interrupted.Load() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (s *Session) record(task *domain.Task, outcome domain.Outcome) {
	s.mu.Lock()

	s.stats.Submitted++
	if outcome.IsSuccess() {
		s.stats.Succeeded++
	} else {
		s.stats.Failed++
	}
	s.stats.AreaUsage[task.Area]++
	s.stats.StoreUsage[task.Source]++

	if s.cfg.Mode.Kind == domain.RunDurationBound {
		s.bumpHourBucket(outcome)
	}

	s.mu.Unlock()

	s.policy.Record(task)

	metrics.TasksSubmitted.WithLabelValues(string(task.Type)).Inc()
	metrics.TaskOutcomes.WithLabelValues(string(task.Type), string(outcome.Kind)).Inc()

	if outcome.IsSuccess() {
		s.log.Info("task succeeded",
			"source", task.Source,
			"destination", task.Destination,
			"error_id", outcome.ErrorID,
			"submitted", s.stats.Submitted)
	} else {
		s.log.Warn("task failed",
			"source", task.Source,
			"destination", task.Destination,
			"outcome", outcome.String(),
			"consecutive_failures", s.breaker.ConsecutiveFailures()+1)
		if s.cfg.OnFailure != nil {
			s.cfg.OnFailure(task, outcome)
		}
	}
}

// bumpHourBucket must be called with s.mu held.
func (s *Session) bumpHourBucket(outcome domain.Outcome) {
	hour := int(s.now().Sub(s.stats.StartedAt) / time.Hour)
	for len(s.stats.Hours) <= hour {
		s.stats.Hours = append(s.stats.Hours, HourBucket{Hour: len(s.stats.Hours) + 1})
	}
	b := &s.stats.Hours[hour]
	b.Submitted++
	if outcome.IsSuccess() {
		b.Succeeded++
	} else {
		b.Failed++
	}
}

func (s *Session) targetReached() bool {
	switch s.cfg.Mode.Kind {
	case domain.RunCountBound:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.stats.Submitted >= s.cfg.Mode.Count
	case domain.RunDurationBound:
		return s.now().Sub(s.stats.StartedAt) >= s.cfg.Mode.Duration
	default:
		return false
	}
}

func (s *Session) pause(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.cfg.Interval):
	}
}

// idle waits for quota to free up. Unlike pause it never returns
// immediately, so a zero interval cannot spin the loop.
func (s *Session) idle(ctx context.Context) {
	wait := s.cfg.Interval
	if wait <= 0 {
		wait = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// transition applies a state change, keeping the record for the
// termination log. Caller holds s.mu.
func (s *Session) transition(to State, reason domain.TerminationReason) (Transition, error) {
	tr := NewTransition(s.state, to, string(reason))
	if !tr.IsValid() {
		return tr, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tr.From, tr.To)
	}
	s.state = tr.To
	return tr, nil
}

func (s *Session) finalize(reason domain.TerminationReason) Stats {
	to := map[domain.TerminationReason]State{
		domain.TerminationCompleted:      StateCompleted,
		domain.TerminationCircuitTripped: StateCircuitTripped,
		domain.TerminationInterrupted:    StateInterrupted,
	}[reason]

	s.mu.Lock()
	tr, err := s.transition(to, reason)
	s.stats.State = s.state
	s.stats.Reason = reason
	s.stats.EndedAt = s.now()
	s.stats.ConsecutiveFailures = s.breaker.ConsecutiveFailures()
	final := s.stats.clone()
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("ignoring state transition", "error", err)
	} else {
		s.log.Debug("state transition",
			"from", tr.From, "to", tr.To, "reason", tr.Reason, "at", tr.Timestamp)
	}

	metrics.SessionRunning.Set(0)
	s.log.Info("session terminated",
		"run_id", final.RunID,
		"reason", reason,
		"submitted", final.Submitted,
		"succeeded", final.Succeeded,
		"failed", final.Failed)

	return final
}
