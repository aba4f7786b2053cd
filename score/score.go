package score

import (
	"time"

	"taskquest/models"
)

// Filter narrows which tasks count toward a total. Zero-valued fields
// match everything; the date range is half-open, [From, To), applied to
// the task creation time.
type Filter struct {
	AssignedTo string
	TeamID     string
	From       *time.Time
	To         *time.Time
}

func (f Filter) matches(t *models.Task) bool {
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.TeamID != "" && (t.TeamID == nil || *t.TeamID != f.TeamID) {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

// Total sums the score of approved tasks passing the filter. Pure
// reduction with no hidden state; safe to call concurrently.
func Total(tasks []*models.Task, f Filter) int {
	total := 0
	for _, t := range tasks {
		if t.Status != models.TaskStatusApproved {
			continue
		}
		if !f.matches(t) {
			continue
		}
		total += t.Score
	}
	return total
}
