package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/dispatcher/internal/core/session"
)

// RunRecord is one persisted run report.
type RunRecord struct {
	RunID               string    `db:"run_id"`
	TaskType            string    `db:"task_type"`
	Mode                string    `db:"mode"`
	Reason              string    `db:"termination_reason"`
	StartedAt           time.Time `db:"started_at"`
	EndedAt             time.Time `db:"ended_at"`
	Submitted           int       `db:"submitted"`
	Succeeded           int       `db:"succeeded"`
	Failed              int       `db:"failed"`
	ConsecutiveFailures int       `db:"consecutive_failures"`
	Usage               []byte    `db:"usage_breakdown"` // JSON area/store counts
}

// RunRepo stores final session reports.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a run history repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save persists one final report.
func (r *RunRepo) Save(ctx context.Context, stats session.Stats) error {
	usage, err := json.Marshal(map[string]any{
		"areas":  stats.AreaUsage,
		"stores": stats.StoreUsage,
		"hours":  stats.Hours,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal usage breakdown: %w", err)
	}

	rec := RunRecord{
		RunID:               stats.RunID,
		TaskType:            string(stats.TaskType),
		Mode:                stats.Mode,
		Reason:              string(stats.Reason),
		StartedAt:           stats.StartedAt,
		EndedAt:             stats.EndedAt,
		Submitted:           stats.Submitted,
		Succeeded:           stats.Succeeded,
		Failed:              stats.Failed,
		ConsecutiveFailures: stats.ConsecutiveFailures,
		Usage:               usage,
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO runs (
			run_id, task_type, mode, termination_reason,
			started_at, ended_at, submitted, succeeded, failed,
			consecutive_failures, usage_breakdown
		) VALUES (
			:run_id, :task_type, :mode, :termination_reason,
			:started_at, :ended_at, :submitted, :succeeded, :failed,
			:consecutive_failures, :usage_breakdown
		)`, rec)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRecent returns the newest runs, most recent first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := r.db.SelectContext(ctx, &runs, `
		SELECT run_id, task_type, mode, termination_reason,
		       started_at, ended_at, submitted, succeeded, failed,
		       consecutive_failures, usage_breakdown
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
