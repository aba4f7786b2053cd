package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusReviewed TaskStatus = "reviewed"
	TaskStatusApproved TaskStatus = "approved"
)

// ParseTaskStatus converts user input to a TaskStatus, empty string on unknown values.
func ParseTaskStatus(s string) TaskStatus {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusReviewed, TaskStatusApproved:
		return TaskStatus(s)
	default:
		return ""
	}
}

type RecurrenceRule string

const (
	RecurrenceNone    RecurrenceRule = "none"
	RecurrenceDaily   RecurrenceRule = "daily"
	RecurrenceWeekly  RecurrenceRule = "weekly"
	RecurrenceMonthly RecurrenceRule = "monthly"
)

func ParseRecurrenceRule(s string) (RecurrenceRule, bool) {
	switch RecurrenceRule(s) {
	case "", RecurrenceNone:
		return RecurrenceNone, true
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return RecurrenceRule(s), true
	default:
		return "", false
	}
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case "":
		return PriorityMedium, true
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), true
	default:
		return "", false
	}
}

// Task is a unit of work moving through pending -> reviewed -> approved.
// Recurring tasks share a SeriesID; each approval materializes the next
// occurrence of the series as a fresh pending Task.
type Task struct {
	ID                uuid.UUID      `json:"id"`
	SeriesID          uuid.UUID      `json:"series_id"`
	Title             string         `json:"title"`
	Details           string         `json:"details"`
	Status            TaskStatus     `json:"status"`
	Priority          TaskPriority   `json:"priority"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         *time.Time     `json:"updated_at,omitempty"`
	AssignedTo        string         `json:"assigned_to"`
	ReviewedBy        *string        `json:"reviewed_by,omitempty"`
	Score             int            `json:"score"`
	TeamID            *string        `json:"team_id,omitempty"`
	Recurrence        RecurrenceRule `json:"recurrence"`
	RecurrenceEndDate *time.Time     `json:"recurrence_end_date,omitempty"`
}

// Clone returns a deep copy so store reads never alias the authoritative record.
func (t *Task) Clone() *Task {
	c := *t
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	if t.ReviewedBy != nil {
		r := *t.ReviewedBy
		c.ReviewedBy = &r
	}
	if t.TeamID != nil {
		id := *t.TeamID
		c.TeamID = &id
	}
	if t.RecurrenceEndDate != nil {
		d := *t.RecurrenceEndDate
		c.RecurrenceEndDate = &d
	}
	return &c
}
