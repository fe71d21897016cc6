package selection

import (
	"math/rand"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// SequentialPolicy implements pickup rule 1: a single area worked
// through in ascending store order. Exhaustion is final: every store
// is attempted exactly once per session.
type SequentialPolicy struct {
	area    string
	pending []string
	dest    destinationPicker
	now     func() time.Time
}

// NewSequentialPolicy creates the rule-1 policy for one area.
func NewSequentialPolicy(area domain.Area, stores []string, fixedStore string, rng *rand.Rand) *SequentialPolicy {
	return &SequentialPolicy{
		area:    area.Name,
		pending: sortStores(area.Stores),
		dest:    destinationPicker{fixed: fixedStore, stores: stores, rng: rng},
		now:     time.Now,
	}
}

// Next returns the lowest-numbered store not yet attempted.
func (p *SequentialPolicy) Next() (*domain.Task, error) {
	if len(p.pending) == 0 {
		return nil, domain.ErrExhausted
	}

	store := p.pending[0]
	p.pending = p.pending[1:]

	return &domain.Task{
		Type:        domain.TaskRegionPickup,
		Source:      store,
		Area:        p.area,
		Destination: p.dest.pick(),
		SubmittedAt: p.now(),
	}, nil
}

// Record is part of the Policy contract. Stores leave the pending set
// at selection time, so there is no in-flight mark to clear.
func (p *SequentialPolicy) Record(task *domain.Task) {}
