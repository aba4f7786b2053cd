package store

import (
	"errors"
	"fmt"

	"taskquest/models"
)

// ErrTaskNotFound reports a task id with no record in the store.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports input that violates a task invariant. The
// operation is rejected whole; nothing is partially applied.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// TransitionError reports an attempt to move a task out of order through
// the pending -> reviewed -> approved machine. The task is left unchanged.
type TransitionError struct {
	From models.TaskStatus
	To   models.TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}
