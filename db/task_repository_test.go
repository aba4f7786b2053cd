package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskquest/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbx, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(dbx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbx
}

func sampleTask(assignee string) *models.Task {
	return &models.Task{
		ID:         uuid.New(),
		SeriesID:   uuid.New(),
		Title:      "Take out trash",
		Details:    "Before 8pm",
		Status:     models.TaskStatusPending,
		Priority:   models.PriorityMedium,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		AssignedTo: assignee,
		Score:      10,
		Recurrence: models.RecurrenceNone,
	}
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	repo := NewTaskRepository(dbx)
	task := sampleTask("u1")
	team := "team-1"
	task.TeamID = &team

	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(context.Background(), task.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != task.Title || got.Status != task.Status || got.AssignedTo != "u1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.TeamID == nil || *got.TeamID != team {
		t.Fatalf("team id = %v, want %s", got.TeamID, team)
	}
	if got.UpdatedAt != nil || got.ReviewedBy != nil {
		t.Fatalf("fresh task carries nullable fields: %+v", got)
	}
}

func TestTaskRepository_Update(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	repo := NewTaskRepository(dbx)
	task := sampleTask("u1")
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	reviewer := "parent-1"
	task.Status = models.TaskStatusApproved
	task.ReviewedBy = &reviewer
	task.UpdatedAt = &now

	if err := repo.Update(context.Background(), task); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(context.Background(), task.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.TaskStatusApproved {
		t.Fatalf("status = %s", got.Status)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != reviewer {
		t.Fatalf("reviewedBy = %v", got.ReviewedBy)
	}

	missing := sampleTask("u1")
	if err := repo.Update(context.Background(), missing); err != sql.ErrNoRows {
		t.Fatalf("updating a missing task: err = %v, want sql.ErrNoRows", err)
	}
}

func TestTaskRepository_ApproveWithNext(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	repo := NewTaskRepository(dbx)
	ctx := context.Background()

	end := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	original := sampleTask("u1")
	original.Recurrence = models.RecurrenceDaily
	original.RecurrenceEndDate = &end
	if err := repo.Create(ctx, original); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	reviewer := "parent-1"
	approved := original.Clone()
	approved.Status = models.TaskStatusApproved
	approved.ReviewedBy = &reviewer
	approved.UpdatedAt = &now

	next := original.Clone()
	next.ID = uuid.New()
	next.CreatedAt = original.CreatedAt.AddDate(0, 0, 1)

	if err := repo.ApproveWithNext(ctx, approved, next); err != nil {
		t.Fatalf("approve with next: %v", err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d tasks, want 2", len(all))
	}
	if all[0].Status != models.TaskStatusApproved || all[1].Status != models.TaskStatusPending {
		t.Fatalf("statuses = %s, %s", all[0].Status, all[1].Status)
	}
	if all[1].SeriesID != original.SeriesID {
		t.Fatalf("series id not carried to next occurrence")
	}
}

func TestTaskRepository_ApproveWithNext_RollsBackOnFailure(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	repo := NewTaskRepository(dbx)
	ctx := context.Background()

	original := sampleTask("u1")
	if err := repo.Create(ctx, original); err != nil {
		t.Fatalf("create: %v", err)
	}

	approved := original.Clone()
	approved.Status = models.TaskStatusApproved

	// Reusing the original id makes the insert violate the primary key.
	dup := original.Clone()
	if err := repo.ApproveWithNext(ctx, approved, dup); err == nil {
		t.Fatal("expected primary key violation")
	}

	got, err := repo.GetByID(ctx, original.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.TaskStatusPending {
		t.Fatalf("failed transaction leaked the update, status = %s", got.Status)
	}
}

func TestTaskRepository_All_Empty(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	all, err := NewTaskRepository(dbx).All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("got %d tasks, want 0", len(all))
	}
}
