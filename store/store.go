package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskquest/models"
	"taskquest/recurrence"
)

// Repository is the optional write-through persistence behind the store.
// A nil Repository leaves the store purely in-memory.
type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	// ApproveWithNext persists an approval together with the next
	// materialized occurrence in one transaction.
	ApproveWithNext(ctx context.Context, approved, next *models.Task) error
	All(ctx context.Context) ([]*models.Task, error)
}

// Store owns the authoritative set of task records. It is the single
// writer: every mutation runs under an exclusive lock, readers see
// consistent snapshots and never alias store-internal records.
type Store struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*models.Task
	repo  Repository
	subs  []func(models.TaskEvent)
}

func New(repo Repository) *Store {
	return &Store{
		tasks: make(map[uuid.UUID]*models.Task),
		repo:  repo,
	}
}

// Subscribe registers a callback invoked after every successful mutation.
// Callbacks run outside the store lock and must not block.
func (s *Store) Subscribe(fn func(models.TaskEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) publish(events ...models.TaskEvent) {
	s.mu.RLock()
	subs := make([]func(models.TaskEvent), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Hydrate loads all persisted tasks into memory. Call once at startup,
// before the store takes traffic.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	tasks, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("hydrate tasks: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

// CreateInput carries the caller-supplied fields of a new task; id,
// series id, timestamps and status are assigned by the store.
type CreateInput struct {
	Title             string
	Details           string
	AssignedTo        string
	Score             int
	TeamID            *string
	Priority          models.TaskPriority
	Recurrence        models.RecurrenceRule
	RecurrenceEndDate *time.Time
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(in.AssignedTo) == "" {
		return nil, &ValidationError{Reason: "assigned_to is required"}
	}
	if in.Score < 0 {
		return nil, &ValidationError{Reason: "score must be non-negative"}
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.Recurrence == "" {
		in.Recurrence = models.RecurrenceNone
	}

	now := time.Now().UTC()
	if in.Recurrence == models.RecurrenceNone {
		if in.RecurrenceEndDate != nil {
			return nil, &ValidationError{Reason: "recurrence_end_date requires a recurrence rule"}
		}
	} else {
		if in.RecurrenceEndDate == nil {
			return nil, fmt.Errorf("%w: rule %q requires an end date", recurrence.ErrInvalidRule, in.Recurrence)
		}
		// Validates the rule/end-date pairing against the creation time.
		if _, err := recurrence.Occurrences(in.Recurrence, now, *in.RecurrenceEndDate); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ID:                uuid.New(),
		SeriesID:          uuid.New(),
		Title:             strings.TrimSpace(in.Title),
		Details:           in.Details,
		Status:            models.TaskStatusPending,
		Priority:          in.Priority,
		CreatedAt:         now,
		AssignedTo:        in.AssignedTo,
		Score:             in.Score,
		TeamID:            in.TeamID,
		Recurrence:        in.Recurrence,
		RecurrenceEndDate: in.RecurrenceEndDate,
	}

	s.mu.Lock()
	if s.repo != nil {
		if err := s.repo.Create(ctx, task); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("persist task: %w", err)
		}
	}
	s.tasks[task.ID] = task
	s.mu.Unlock()

	s.publish(models.TaskEvent{
		TaskID:    task.ID,
		OldStatus: "",
		NewStatus: models.TaskStatusPending,
		Timestamp: now,
	})
	return task.Clone(), nil
}

// SubmitForReview moves a pending task to reviewed.
func (s *Store) SubmitForReview(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.transition(ctx, id, models.TaskStatusPending, models.TaskStatusReviewed, func(t *models.Task) {})
}

// Reject returns a reviewed task to pending for rework and clears the
// reviewer.
func (s *Store) Reject(ctx context.Context, id uuid.UUID, reviewerID string) (*models.Task, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, &ValidationError{Reason: "reviewer id is required"}
	}
	return s.transition(ctx, id, models.TaskStatusReviewed, models.TaskStatusPending, func(t *models.Task) {
		t.ReviewedBy = nil
	})
}

func (s *Store) transition(ctx context.Context, id uuid.UUID, from, to models.TaskStatus, apply func(*models.Task)) (*models.Task, error) {
	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if current.Status != from {
		s.mu.Unlock()
		return nil, &TransitionError{From: current.Status, To: to}
	}

	now := time.Now().UTC()
	updated := current.Clone()
	updated.Status = to
	updated.UpdatedAt = &now
	apply(updated)

	if s.repo != nil {
		if err := s.repo.Update(ctx, updated); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("persist task update: %w", err)
		}
	}
	s.tasks[id] = updated
	s.mu.Unlock()

	s.publish(models.TaskEvent{TaskID: id, OldStatus: from, NewStatus: to, Timestamp: now})
	return updated.Clone(), nil
}

// Approve moves a reviewed task to approved and, for recurring tasks,
// materializes the next occurrence of the series as a fresh pending task.
// Approval and materialization are atomic: on a persistence failure
// neither is applied. Occurrences are created one at a time, only as the
// prior one completes; the series is never pre-materialized.
func (s *Store) Approve(ctx context.Context, id uuid.UUID, reviewerID string) (*models.Task, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, &ValidationError{Reason: "reviewer id is required"}
	}

	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if current.Status != models.TaskStatusReviewed {
		s.mu.Unlock()
		return nil, &TransitionError{From: current.Status, To: models.TaskStatusApproved}
	}

	now := time.Now().UTC()
	approved := current.Clone()
	approved.Status = models.TaskStatusApproved
	approved.ReviewedBy = &reviewerID
	approved.UpdatedAt = &now

	var next *models.Task
	if approved.Recurrence != models.RecurrenceNone {
		nextDate, ok, err := recurrence.Next(
			approved.Recurrence, approved.CreatedAt, approved.CreatedAt, *approved.RecurrenceEndDate)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("resolve next occurrence: %w", err)
		}
		if ok && !s.seriesHasOccurrenceLocked(approved.SeriesID, nextDate) {
			next = &models.Task{
				ID:                uuid.New(),
				SeriesID:          approved.SeriesID,
				Title:             approved.Title,
				Details:           approved.Details,
				Status:            models.TaskStatusPending,
				Priority:          approved.Priority,
				CreatedAt:         nextDate,
				AssignedTo:        approved.AssignedTo,
				Score:             approved.Score,
				TeamID:            approved.TeamID,
				Recurrence:        approved.Recurrence,
				RecurrenceEndDate: approved.RecurrenceEndDate,
			}
		}
	}

	if s.repo != nil {
		var err error
		if next != nil {
			err = s.repo.ApproveWithNext(ctx, approved, next)
		} else {
			err = s.repo.Update(ctx, approved)
		}
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("persist approval: %w", err)
		}
	}
	s.tasks[approved.ID] = approved
	if next != nil {
		s.tasks[next.ID] = next
	}
	s.mu.Unlock()

	events := []models.TaskEvent{{
		TaskID:    approved.ID,
		OldStatus: models.TaskStatusReviewed,
		NewStatus: models.TaskStatusApproved,
		Timestamp: now,
	}}
	if next != nil {
		events = append(events, models.TaskEvent{
			TaskID:    next.ID,
			OldStatus: "",
			NewStatus: models.TaskStatusPending,
			Timestamp: now,
		})
	}
	s.publish(events...)
	return approved.Clone(), nil
}

func (s *Store) seriesHasOccurrenceLocked(seriesID uuid.UUID, date time.Time) bool {
	for _, t := range s.tasks {
		if t.SeriesID == seriesID && t.CreatedAt.Equal(date) {
			return true
		}
	}
	return false
}

// Reassign updates the assignee of a pending task. This is the hook the
// appeal / fairness-voting collaborator uses; it is a plain field update,
// not a status transition.
func (s *Store) Reassign(ctx context.Context, id uuid.UUID, assignee string) (*models.Task, error) {
	if strings.TrimSpace(assignee) == "" {
		return nil, &ValidationError{Reason: "assignee is required"}
	}
	return s.updateFields(ctx, id, func(t *models.Task) error {
		if t.Status != models.TaskStatusPending {
			return &ValidationError{Reason: "only pending tasks can be reassigned"}
		}
		t.AssignedTo = assignee
		return nil
	})
}

// UpdateContent edits title and details. Allowed until approval.
func (s *Store) UpdateContent(ctx context.Context, id uuid.UUID, title, details *string) (*models.Task, error) {
	return s.updateFields(ctx, id, func(t *models.Task) error {
		if t.Status == models.TaskStatusApproved {
			return &ValidationError{Reason: "approved tasks are immutable"}
		}
		if title != nil {
			trimmed := strings.TrimSpace(*title)
			if trimmed == "" {
				return &ValidationError{Reason: "title cannot be empty"}
			}
			t.Title = trimmed
		}
		if details != nil {
			t.Details = *details
		}
		return nil
	})
}

func (s *Store) updateFields(ctx context.Context, id uuid.UUID, apply func(*models.Task) error) (*models.Task, error) {
	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}

	updated := current.Clone()
	if err := apply(updated); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = &now

	if s.repo != nil {
		if err := s.repo.Update(ctx, updated); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("persist task update: %w", err)
		}
	}
	s.tasks[id] = updated
	s.mu.Unlock()

	s.publish(models.TaskEvent{
		TaskID:    id,
		OldStatus: updated.Status,
		NewStatus: updated.Status,
		Timestamp: now,
	})
	return updated.Clone(), nil
}

func (s *Store) Get(id uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Filter narrows List results; zero-valued fields match everything.
type Filter struct {
	AssignedTo string
	TeamID     string
	Status     models.TaskStatus
}

func (f Filter) matches(t *models.Task) bool {
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.TeamID != "" && (t.TeamID == nil || *t.TeamID != f.TeamID) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// List returns a consistent snapshot ordered by creation time.
func (s *Store) List(f Filter) []*models.Task {
	s.mu.RLock()
	out := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.matches(t) {
			out = append(out, t.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
