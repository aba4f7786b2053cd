package db

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"taskquest/models"
	"taskquest/streak"
)

func TestStreakRepository_UpsertAndAll(t *testing.T) {
	dbx := setupTestDB(t)
	defer dbx.Close()

	repo := NewStreakRepository(dbx)
	ctx := context.Background()

	rec := streak.Record{
		UserID:           "u1",
		State:            models.StreakState{CurrentStreak: 2, LongestStreak: 5},
		LastEvaluatedDay: "2025-06-01",
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Second upsert for the same user replaces the row.
	rec.State.CurrentStreak = 3
	rec.LastEvaluatedDay = "2025-06-02"
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if err := repo.Upsert(ctx, streak.Record{
		UserID:           "u2",
		State:            models.StreakState{CurrentStreak: 1, LongestStreak: 1},
		LastEvaluatedDay: "2025-06-02",
	}); err != nil {
		t.Fatalf("upsert u2: %v", err)
	}

	recs, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	byUser := make(map[string]streak.Record)
	for _, r := range recs {
		byUser[r.UserID] = r
	}
	u1 := byUser["u1"]
	if u1.State.CurrentStreak != 3 || u1.State.LongestStreak != 5 || u1.LastEvaluatedDay != "2025-06-02" {
		t.Fatalf("u1 record = %+v", u1)
	}
}
