package selection

import (
	"math/rand"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// RandomPolicy implements pickup rule 2: each iteration picks an area
// at random among those still holding unexecuted stores, then the
// lowest-numbered store within it. The immediately previous area is
// excluded whenever at least two areas remain, so the same physical
// region is never targeted twice in direct succession.
type RandomPolicy struct {
	order    []string
	pending  map[string][]string
	lastArea string
	dest     destinationPicker
	rng      *rand.Rand
	now      func() time.Time
}

// NewRandomPolicy creates the rule-2 policy over the configured areas.
func NewRandomPolicy(areas []domain.Area, stores []string, fixedStore string, rng *rand.Rand) *RandomPolicy {
	p := &RandomPolicy{
		order:   make([]string, 0, len(areas)),
		pending: make(map[string][]string, len(areas)),
		dest:    destinationPicker{fixed: fixedStore, stores: stores, rng: rng},
		rng:     rng,
		now:     time.Now,
	}
	for _, a := range areas {
		p.order = append(p.order, a.Name)
		p.pending[a.Name] = sortStores(a.Stores)
	}
	return p
}

// Next picks an area, then that area's lowest-numbered pending store.
func (p *RandomPolicy) Next() (*domain.Task, error) {
	remaining := make([]string, 0, len(p.order))
	for _, area := range p.order {
		if len(p.pending[area]) > 0 {
			remaining = append(remaining, area)
		}
	}
	if len(remaining) == 0 {
		return nil, domain.ErrExhausted
	}

	candidates := remaining
	if len(remaining) >= 2 && p.lastArea != "" {
		filtered := make([]string, 0, len(remaining))
		for _, area := range remaining {
			if area != p.lastArea {
				filtered = append(filtered, area)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	area := candidates[p.rng.Intn(len(candidates))]
	store := p.pending[area][0]
	p.pending[area] = p.pending[area][1:]
	p.lastArea = area

	return &domain.Task{
		Type:        domain.TaskRegionPickup,
		Source:      store,
		Area:        area,
		Destination: p.dest.pick(),
		SubmittedAt: p.now(),
	}, nil
}

// Record is part of the Policy contract; selection already removed the
// store from its pending queue.
func (p *RandomPolicy) Record(task *domain.Task) {}
