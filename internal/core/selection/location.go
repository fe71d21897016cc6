package selection

import (
	"math/rand"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// LiftPolicy selects lift-to-zone tasks: it cycles through the
// configured locations in order and enforces a per-location cap over a
// rolling hour window. A location whose quota is spent in the current
// window is skipped, not failed; when every location is spent the
// policy reports domain.ErrQuotaExhausted until the window rolls over.
type LiftPolicy struct {
	locations []string
	perHour   int
	areas     *AreaSelector

	rrIndex  int
	windows  map[string][]time.Time
	inFlight map[string]bool

	now func() time.Time
}

// NewLiftPolicy creates the round-robin location policy.
func NewLiftPolicy(locations, dropAreas []string, perHour int, rng *rand.Rand) *LiftPolicy {
	return &LiftPolicy{
		locations: append([]string(nil), locations...),
		perHour:   perHour,
		areas:     NewAreaSelector(dropAreas, rng),
		windows:   make(map[string][]time.Time, len(locations)),
		inFlight:  make(map[string]bool, len(locations)),
		now:       time.Now,
	}
}

// Next returns the next location with remaining hourly quota, paired
// with a drop area. Quota is consumed at selection time.
func (p *LiftPolicy) Next() (*domain.Task, error) {
	now := p.now()
	cutoff := now.Add(-time.Hour)

	for i := 0; i < len(p.locations); i++ {
		idx := (p.rrIndex + i) % len(p.locations)
		loc := p.locations[idx]

		if p.inFlight[loc] {
			continue
		}

		p.pruneWindow(loc, cutoff)
		if len(p.windows[loc]) >= p.perHour {
			continue
		}

		p.rrIndex = (idx + 1) % len(p.locations)
		p.windows[loc] = append(p.windows[loc], now)
		p.inFlight[loc] = true

		area := p.areas.Select()
		return &domain.Task{
			Type:        domain.TaskLiftToZone,
			Source:      loc,
			Area:        area,
			Destination: area,
			SubmittedAt: now,
		}, nil
	}

	return nil, domain.ErrQuotaExhausted
}

// Record clears the in-flight mark once the task's outcome is recorded.
func (p *LiftPolicy) Record(task *domain.Task) {
	delete(p.inFlight, task.Source)
}

func (p *LiftPolicy) pruneWindow(loc string, cutoff time.Time) {
	window := p.windows[loc]
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	p.windows[loc] = kept
}
