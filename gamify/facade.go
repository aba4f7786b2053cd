package gamify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskquest/models"
	"taskquest/score"
	"taskquest/store"
	"taskquest/streak"
)

// Action names one step through the task state machine.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Engine is the single query/command surface over the task store, streak
// tracker and score aggregation. All dependencies are constructor-injected.
type Engine struct {
	store   *store.Store
	tracker *streak.Tracker
}

func New(taskStore *store.Store, tracker *streak.Tracker) *Engine {
	return &Engine{store: taskStore, tracker: tracker}
}

func (e *Engine) CreateTask(ctx context.Context, in store.CreateInput) (*models.Task, error) {
	return e.store.Create(ctx, in)
}

// AdvanceTask dispatches one state-machine action on behalf of an actor.
func (e *Engine) AdvanceTask(ctx context.Context, id uuid.UUID, action Action, actorID string) (*models.Task, error) {
	switch action {
	case ActionSubmit:
		return e.store.SubmitForReview(ctx, id)
	case ActionApprove:
		return e.store.Approve(ctx, id, actorID)
	case ActionReject:
		return e.store.Reject(ctx, id, actorID)
	default:
		return nil, &store.ValidationError{Reason: fmt.Sprintf("unknown action %q", action)}
	}
}

func (e *Engine) Task(id uuid.UUID) (*models.Task, error) {
	return e.store.Get(id)
}

func (e *Engine) Tasks(f store.Filter) []*models.Task {
	return e.store.List(f)
}

func (e *Engine) Reassign(ctx context.Context, id uuid.UUID, assignee string) (*models.Task, error) {
	return e.store.Reassign(ctx, id, assignee)
}

func (e *Engine) UpdateContent(ctx context.Context, id uuid.UUID, title, details *string) (*models.Task, error) {
	return e.store.UpdateContent(ctx, id, title, details)
}

// Dashboard is the per-user summary an API or UI renders.
type Dashboard struct {
	Tasks          []*models.Task     `json:"tasks"`
	Streak         models.StreakState `json:"streak"`
	TotalXP        int                `json:"total_xp"`
	CompletionRate float64            `json:"completion_rate"`
}

func (e *Engine) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if userID == "" {
		return nil, &store.ValidationError{Reason: "user id is required"}
	}
	tasks := e.store.List(store.Filter{AssignedTo: userID})

	approved := 0
	for _, t := range tasks {
		if t.Status == models.TaskStatusApproved {
			approved++
		}
	}
	total := len(tasks)
	if total == 0 {
		total = 1
	}

	return &Dashboard{
		Tasks:          tasks,
		Streak:         e.tracker.State(userID),
		TotalXP:        score.Total(tasks, score.Filter{}),
		CompletionRate: float64(approved) / float64(total),
	}, nil
}

// EvaluateDay runs the day-boundary streak evaluation for every assignee
// known to the store. A user's day qualifies when at least one of their
// tasks entered approved during it. day is the midnight opening the day
// being scored; the tracker makes repeated evaluations of one day no-ops.
func (e *Engine) EvaluateDay(ctx context.Context, day time.Time) error {
	dayEnd := day.AddDate(0, 0, 1)
	completed := make(map[string]bool)
	for _, t := range e.store.List(store.Filter{}) {
		if _, seen := completed[t.AssignedTo]; !seen {
			completed[t.AssignedTo] = false
		}
		if t.Status != models.TaskStatusApproved || t.UpdatedAt == nil {
			continue
		}
		// Approved tasks are immutable, so UpdatedAt is the approval time.
		if !t.UpdatedAt.Before(day) && t.UpdatedAt.Before(dayEnd) {
			completed[t.AssignedTo] = true
		}
	}

	for userID, done := range completed {
		if _, err := e.tracker.Evaluate(ctx, userID, day, done); err != nil {
			return fmt.Errorf("evaluate streak for %s: %w", userID, err)
		}
	}
	return nil
}
