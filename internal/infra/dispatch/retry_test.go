package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// scriptedAdapter returns its outcomes in order and counts attempts.
// The last outcome repeats once the script runs out.
type scriptedAdapter struct {
	outcomes []domain.Outcome
	attempts int
}

func (a *scriptedAdapter) Submit(ctx context.Context, task *domain.Task) domain.Outcome {
	i := a.attempts
	if i >= len(a.outcomes) {
		i = len(a.outcomes) - 1
	}
	a.attempts++
	return a.outcomes[i]
}

func testTask() *domain.Task {
	return &domain.Task{Type: domain.TaskLiftToZone, Source: "L1", Destination: "drop-1"}
}

func TestAttemptRetriesTransportFailuresOnly(t *testing.T) {
	success := domain.Success(0, "ok")
	business := domain.BusinessFailure(50400001, "occupied")
	transport := domain.TransportFailure(errors.New("connection reset"))

	tests := []struct {
		name         string
		script       []domain.Outcome
		retryCount   int
		wantKind     domain.OutcomeKind
		wantAttempts int
	}{
		{
			name:         "first attempt succeeds",
			script:       []domain.Outcome{success},
			retryCount:   2,
			wantKind:     domain.OutcomeSuccess,
			wantAttempts: 1,
		},
		{
			name:         "business failure is never retried",
			script:       []domain.Outcome{business},
			retryCount:   2,
			wantKind:     domain.OutcomeBusinessFailure,
			wantAttempts: 1,
		},
		{
			name:         "transport failure recovers on retry",
			script:       []domain.Outcome{transport, success},
			retryCount:   2,
			wantKind:     domain.OutcomeSuccess,
			wantAttempts: 2,
		},
		{
			name:         "transport then business stops retrying",
			script:       []domain.Outcome{transport, business},
			retryCount:   2,
			wantKind:     domain.OutcomeBusinessFailure,
			wantAttempts: 2,
		},
		{
			name:         "budget exhausted returns last transport failure",
			script:       []domain.Outcome{transport, transport, transport},
			retryCount:   2,
			wantKind:     domain.OutcomeTransportFailure,
			wantAttempts: 3,
		},
		{
			name:         "zero retries means a single attempt",
			script:       []domain.Outcome{transport},
			retryCount:   0,
			wantKind:     domain.OutcomeTransportFailure,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &scriptedAdapter{outcomes: tt.script}
			c := NewController(adapter, RetryConfig{RetryCount: tt.retryCount, RetryDelay: time.Millisecond}, nil)

			got := c.Attempt(context.Background(), testTask())
			if got.Kind != tt.wantKind {
				t.Errorf("Attempt() kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if adapter.attempts != tt.wantAttempts {
				t.Errorf("adapter attempts = %d, want %d", adapter.attempts, tt.wantAttempts)
			}
		})
	}
}

func TestAttemptStopsWhenContextCancelled(t *testing.T) {
	transport := domain.TransportFailure(errors.New("connection reset"))
	adapter := &scriptedAdapter{outcomes: []domain.Outcome{transport}}
	c := NewController(adapter, RetryConfig{RetryCount: 5, RetryDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := c.Attempt(ctx, testTask())
	if got.Kind != domain.OutcomeTransportFailure {
		t.Fatalf("Attempt() kind = %q, want transport failure", got.Kind)
	}
	if !errors.Is(got.Err, context.Canceled) {
		t.Errorf("Attempt() err = %v, want context.Canceled", got.Err)
	}
	if adapter.attempts != 1 {
		t.Errorf("adapter attempts = %d, want 1 before the cancelled delay", adapter.attempts)
	}
}
