package breaker

import (
	"errors"
	"testing"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

var (
	ok  = domain.Success(50421021, "ok")
	biz = domain.BusinessFailure(50400001, "occupied")
	net = domain.TransportFailure(errors.New("connection refused"))
)

func TestRecordCountsConsecutiveFailures(t *testing.T) {
	tests := []struct {
		name        string
		outcomes    []domain.Outcome
		wantCount   int
		wantTripped bool
	}{
		{
			name:        "all success",
			outcomes:    []domain.Outcome{ok, ok, ok},
			wantCount:   0,
			wantTripped: false,
		},
		{
			name:        "success resets counter",
			outcomes:    []domain.Outcome{net, biz, ok, net},
			wantCount:   1,
			wantTripped: false,
		},
		{
			name:        "mixed failure kinds accumulate",
			outcomes:    []domain.Outcome{biz, net, biz},
			wantCount:   3,
			wantTripped: true,
		},
		{
			name:        "one short of threshold",
			outcomes:    []domain.Outcome{net, net},
			wantCount:   2,
			wantTripped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(3)
			for _, o := range tt.outcomes {
				b.Record(o)
			}
			if got := b.ConsecutiveFailures(); got != tt.wantCount {
				t.Errorf("ConsecutiveFailures() = %d, want %d", got, tt.wantCount)
			}
			if got := b.Tripped(); got != tt.wantTripped {
				t.Errorf("Tripped() = %v, want %v", got, tt.wantTripped)
			}
		})
	}
}

func TestRecordReturnsTrueExactlyAtThreshold(t *testing.T) {
	b := New(3)

	if b.Record(net) {
		t.Error("tripped after 1 failure, threshold is 3")
	}
	if b.Record(net) {
		t.Error("tripped after 2 failures, threshold is 3")
	}
	if !b.Record(net) {
		t.Error("did not trip at 3 failures")
	}
	// Record past the threshold does not re-signal the trip.
	if b.Record(net) {
		t.Error("re-signaled trip after threshold")
	}
	if !b.Tripped() {
		t.Error("trip is not sticky")
	}
}

func TestCounterMatchesFailureSuffix(t *testing.T) {
	// The counter must always equal the length of the longest suffix
	// of non-success outcomes seen so far.
	sequence := []domain.Outcome{net, ok, biz, net, ok, ok, net, biz, net}

	b := New(100)
	suffix := 0
	for i, o := range sequence {
		b.Record(o)
		if o.IsSuccess() {
			suffix = 0
		} else {
			suffix++
		}
		if got := b.ConsecutiveFailures(); got != suffix {
			t.Fatalf("after outcome %d: ConsecutiveFailures() = %d, want %d", i, got, suffix)
		}
	}
}
