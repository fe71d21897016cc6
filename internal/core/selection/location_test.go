package selection

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

func newLiftPolicy(locations []string, perHour int) *LiftPolicy {
	return NewLiftPolicy(locations, []string{"drop-1"}, perHour, rand.New(rand.NewSource(1)))
}

// step selects the next task and immediately records it, the way the
// session does for a sequential submit-then-record loop.
func step(t *testing.T, p *LiftPolicy) *domain.Task {
	t.Helper()
	task, err := p.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	p.Record(task)
	return task
}

func TestLiftPolicyRoundRobin(t *testing.T) {
	p := newLiftPolicy([]string{"L1", "L2", "L3"}, 100)

	want := []string{"L1", "L2", "L3", "L1", "L2", "L3"}
	for i, loc := range want {
		task := step(t, p)
		if task.Source != loc {
			t.Errorf("step %d source = %q, want %q", i, task.Source, loc)
		}
		if task.Type != domain.TaskLiftToZone {
			t.Errorf("step %d type = %q, want %q", i, task.Type, domain.TaskLiftToZone)
		}
		if task.Destination != "drop-1" {
			t.Errorf("step %d destination = %q, want drop-1", i, task.Destination)
		}
	}
}

func TestLiftPolicySkipsLocationOverQuota(t *testing.T) {
	p := newLiftPolicy([]string{"L1", "L2"}, 2)

	// L1 L2 L1 L2 spends both quotas.
	sources := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		sources = append(sources, step(t, p).Source)
	}
	want := []string{"L1", "L2", "L1", "L2"}
	for i := range want {
		if sources[i] != want[i] {
			t.Fatalf("selection order = %v, want %v", sources, want)
		}
	}

	_, err := p.Next()
	if !errors.Is(err, domain.ErrQuotaExhausted) {
		t.Errorf("Next() with all quotas spent = %v, want ErrQuotaExhausted", err)
	}
	// Window-relative exhaustion still satisfies the generic sentinel.
	if !errors.Is(err, domain.ErrExhausted) {
		t.Errorf("quota exhaustion does not wrap ErrExhausted: %v", err)
	}
}

func TestLiftPolicyQuotaWindowRollsOver(t *testing.T) {
	p := newLiftPolicy([]string{"L1"}, 1)

	current := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return current }

	if task := step(t, p); task.Source != "L1" {
		t.Fatalf("source = %q, want L1", task.Source)
	}
	if _, err := p.Next(); !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("Next() within window = %v, want ErrExhausted", err)
	}

	// 30 minutes later the submission still counts against the window.
	current = current.Add(30 * time.Minute)
	if _, err := p.Next(); !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("Next() at +30m = %v, want ErrExhausted", err)
	}

	// Past the hour the old submission ages out and quota is free again.
	current = current.Add(31 * time.Minute)
	task := step(t, p)
	if task.Source != "L1" {
		t.Errorf("source after rollover = %q, want L1", task.Source)
	}
}

func TestLiftPolicyHoldsInFlightLocation(t *testing.T) {
	p := newLiftPolicy([]string{"L1", "L2"}, 100)

	first, err := p.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}

	// L1 is pending an outcome, so the next selection must skip it even
	// though round-robin would come back to it.
	second, err := p.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	third, err := p.Next()
	if !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("Next() with both in flight = (%v, %v), want ErrExhausted", third, err)
	}

	p.Record(first)
	task, err := p.Next()
	if err != nil {
		t.Fatalf("Next() after Record: %v", err)
	}
	if task.Source != first.Source {
		t.Errorf("source = %q, want released %q", task.Source, first.Source)
	}
	_ = second
}

func TestAreaSelectorBalancesUsage(t *testing.T) {
	s := NewAreaSelector([]string{"drop-1", "drop-2", "drop-3"}, rand.New(rand.NewSource(5)))

	for i := 0; i < 9; i++ {
		s.Select()
	}

	for area, count := range s.Usage() {
		if count != 3 {
			t.Errorf("area %q used %d times, want 3 after 9 balanced selections", area, count)
		}
	}
}
