// Package storage defines the persistence contracts implemented by
// the concrete backends.
package storage

import (
	"context"

	"github.com/vietddude/dispatcher/internal/core/session"
)

// RunRepository stores final session reports.
type RunRepository interface {
	// Save persists one final report.
	Save(ctx context.Context, stats session.Stats) error
}
