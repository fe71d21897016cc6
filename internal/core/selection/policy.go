// Package selection implements the per-session policies that pick the
// next (source, destination) pair for a task type. Policies are pure
// in-memory state owned by one session; they are not safe for
// concurrent use and do not need to be; submissions are sequential.
package selection

import (
	"math/rand"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// Policy picks the next task to submit.
//
// Next returns domain.ErrExhausted when nothing will become selectable
// again, or domain.ErrQuotaExhausted when selection can resume after
// the quota window rolls over. A returned source is held in flight and
// will not be selected again until Record is called with its task, so
// a session never has two pending selections of the same source.
type Policy interface {
	Next() (*domain.Task, error)
	Record(task *domain.Task)
}

// destinationPicker resolves the target store for pickup tasks: the
// fixed store when configured, otherwise a uniform random choice from
// the allowed store set.
type destinationPicker struct {
	fixed  string
	stores []string
	rng    *rand.Rand
}

func (d destinationPicker) pick() string {
	if d.fixed != "" {
		return d.fixed
	}
	return d.stores[d.rng.Intn(len(d.stores))]
}
