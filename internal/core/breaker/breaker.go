// Package breaker implements the consecutive-failure circuit breaker
// that halts a session after too many failed submissions in a row.
package breaker

import "github.com/vietddude/dispatcher/internal/core/domain"

// Breaker counts consecutive non-success outcomes. Once the count
// reaches the threshold the breaker trips and stays tripped for the
// remainder of the session.
type Breaker struct {
	threshold   int
	consecutive int
	tripped     bool
}

// New creates a breaker with the given threshold.
func New(threshold int) *Breaker {
	return &Breaker{threshold: threshold}
}

// Record feeds one outcome into the breaker. It returns true exactly
// when this outcome makes the consecutive-failure count reach the
// threshold.
func (b *Breaker) Record(outcome domain.Outcome) bool {
	if outcome.IsSuccess() {
		b.consecutive = 0
		return false
	}

	b.consecutive++
	if b.consecutive == b.threshold {
		b.tripped = true
		return true
	}
	return false
}

// Tripped reports whether the breaker has tripped. Sticky.
func (b *Breaker) Tripped() bool {
	return b.tripped
}

// ConsecutiveFailures returns the current failure run length.
func (b *Breaker) ConsecutiveFailures() int {
	return b.consecutive
}

// Threshold returns the configured trip threshold.
func (b *Breaker) Threshold() int {
	return b.threshold
}
