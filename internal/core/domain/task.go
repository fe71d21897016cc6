package domain

import "time"

// TaskType identifies which move-task flow a submission belongs to.
type TaskType string

const (
	TaskLiftToZone   TaskType = "lift_to_zone"
	TaskRegionPickup TaskType = "region_pickup"
)

// Task is a single move-task submission. It is created by a selection
// policy, consumed once by the retry controller, and discarded after its
// outcome is recorded.
type Task struct {
	Type        TaskType
	Source      string // location id (lift) or store location id (pickup)
	Area        string // area the source belongs to
	Destination string // drop-zone area (lift) or target store (pickup)
	SubmittedAt time.Time
}
