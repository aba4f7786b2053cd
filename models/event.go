package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskEvent describes one successful task mutation. OldStatus equals
// NewStatus for non-transition updates (reassignment, content edits).
type TaskEvent struct {
	TaskID    uuid.UUID  `json:"task_id"`
	OldStatus TaskStatus `json:"old_status"`
	NewStatus TaskStatus `json:"new_status"`
	Timestamp time.Time  `json:"timestamp"`
}
