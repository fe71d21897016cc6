package session

import (
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// HourBucket is the per-hour breakdown kept for duration-bound runs.
type HourBucket struct {
	Hour      int `json:"hour"`
	Submitted int `json:"submitted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Stats aggregates everything the final report needs. A copy is also
// served as a best-effort snapshot while the session is running.
type Stats struct {
	RunID    string          `json:"run_id"`
	TaskType domain.TaskType `json:"task_type"`
	Mode     string          `json:"mode"`
	State    State           `json:"state"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	Submitted int `json:"submitted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	ConsecutiveFailures int                      `json:"consecutive_failures"`
	Reason              domain.TerminationReason `json:"termination_reason,omitempty"`

	AreaUsage  map[string]int `json:"area_usage"`
	StoreUsage map[string]int `json:"store_usage"`
	Hours      []HourBucket   `json:"hours,omitempty"`
}

// SuccessRate returns succeeded/submitted, 0 when nothing was submitted.
func (s *Stats) SuccessRate() float64 {
	if s.Submitted == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Submitted)
}

// Elapsed returns the session's wall-clock duration so far.
func (s *Stats) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartedAt)
}

func (s *Stats) clone() Stats {
	out := *s
	out.AreaUsage = copyCounts(s.AreaUsage)
	out.StoreUsage = copyCounts(s.StoreUsage)
	out.Hours = append([]HourBucket(nil), s.Hours...)
	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
