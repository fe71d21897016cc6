package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// failedTaskTTL bounds how long failed submissions stay inspectable.
const failedTaskTTL = 24 * time.Hour

// FailedTask is the serialized record of one failed submission.
type FailedTask struct {
	RunID       string          `json:"run_id"`
	TaskType    domain.TaskType `json:"task_type"`
	Source      string          `json:"source"`
	Area        string          `json:"area"`
	Destination string          `json:"destination"`
	Outcome     string          `json:"outcome"`
	ErrorID     int             `json:"error_id,omitempty"`
	Info        string          `json:"info,omitempty"`
	FailedAt    time.Time       `json:"failed_at"`
}

// FailedTaskRepo records failed submissions for later inspection.
type FailedTaskRepo struct {
	rdb   *redis.Client
	runID string
}

// NewFailedTaskRepo creates a sink scoped to one run.
func NewFailedTaskRepo(client *Client, runID string) *FailedTaskRepo {
	return &FailedTaskRepo{rdb: client.rdb, runID: runID}
}

func (r *FailedTaskRepo) queueKey() string {
	return fmt.Sprintf("failed_tasks:%s", r.runID)
}

func (r *FailedTaskRepo) taskKey(seq int64) string {
	return fmt.Sprintf("failed_task:%s:%d", r.runID, seq)
}

// Add appends one failed submission to the run's queue.
func (r *FailedTaskRepo) Add(ctx context.Context, task *domain.Task, outcome domain.Outcome) error {
	record := FailedTask{
		RunID:       r.runID,
		TaskType:    task.Type,
		Source:      task.Source,
		Area:        task.Area,
		Destination: task.Destination,
		Outcome:     outcome.String(),
		ErrorID:     outcome.ErrorID,
		Info:        outcome.Info,
		FailedAt:    time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failed task: %w", err)
	}

	seq, err := r.rdb.Incr(ctx, fmt.Sprintf("failed_tasks_seq:%s", r.runID)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	if err := r.rdb.Set(ctx, r.taskKey(seq), data, failedTaskTTL).Err(); err != nil {
		return fmt.Errorf("failed to set failed task: %w", err)
	}

	// Sorted set keyed by failure time so inspection reads in order.
	if err := r.rdb.ZAdd(ctx, r.queueKey(), redis.Z{
		Score:  float64(record.FailedAt.UnixMilli()),
		Member: r.taskKey(seq),
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}
	if err := r.rdb.Expire(ctx, r.queueKey(), failedTaskTTL).Err(); err != nil {
		return fmt.Errorf("failed to expire queue: %w", err)
	}

	return nil
}

// List returns up to limit failed tasks for the run, oldest first.
func (r *FailedTaskRepo) List(ctx context.Context, limit int64) ([]FailedTask, error) {
	keys, err := r.rdb.ZRange(ctx, r.queueKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	out := make([]FailedTask, 0, len(keys))
	for _, key := range keys {
		data, err := r.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue // value expired before the index entry
		}
		if err != nil {
			return nil, fmt.Errorf("get failed task: %w", err)
		}
		var ft FailedTask
		if err := json.Unmarshal(data, &ft); err != nil {
			return nil, fmt.Errorf("unmarshal failed task: %w", err)
		}
		out = append(out, ft)
	}
	return out, nil
}
