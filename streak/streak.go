package streak

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskquest/models"
)

// Record is one persisted per-user streak row.
type Record struct {
	UserID           string
	State            models.StreakState
	LastEvaluatedDay string
}

// Repository is the optional persistence behind the tracker.
type Repository interface {
	Upsert(ctx context.Context, rec Record) error
	All(ctx context.Context) ([]Record, error)
}

// Tracker keeps per-user daily completion streaks. It holds only the
// derived counters, never task data; the caller decides whether a day
// qualified. Evaluations are keyed by (user, day) so repeating one is a
// no-op rather than a double count.
type Tracker struct {
	mu      sync.Mutex
	states  map[string]models.StreakState
	lastDay map[string]string
	repo    Repository
}

func New(repo Repository) *Tracker {
	return &Tracker{
		states:  make(map[string]models.StreakState),
		lastDay: make(map[string]string),
		repo:    repo,
	}
}

// Hydrate loads persisted streaks. Call once at startup.
func (t *Tracker) Hydrate(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	recs, err := t.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("hydrate streaks: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range recs {
		t.states[rec.UserID] = rec.State
		t.lastDay[rec.UserID] = rec.LastEvaluatedDay
	}
	return nil
}

// Evaluate applies one day-boundary evaluation for a user. A completed
// day extends the current streak and lifts the longest streak with it; a
// missed day resets the current streak and leaves the longest alone.
func (t *Tracker) Evaluate(ctx context.Context, userID string, day time.Time, completed bool) (models.StreakState, error) {
	key := day.Format(time.DateOnly)

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.states[userID]
	if t.lastDay[userID] == key {
		return state, nil
	}

	if completed {
		state.CurrentStreak++
		if state.CurrentStreak > state.LongestStreak {
			state.LongestStreak = state.CurrentStreak
		}
	} else {
		state.CurrentStreak = 0
	}

	if t.repo != nil {
		rec := Record{UserID: userID, State: state, LastEvaluatedDay: key}
		if err := t.repo.Upsert(ctx, rec); err != nil {
			return t.states[userID], fmt.Errorf("persist streak: %w", err)
		}
	}
	t.states[userID] = state
	t.lastDay[userID] = key
	return state, nil
}

// State returns the current counters for a user; zero value for unknown users.
func (t *Tracker) State(userID string) models.StreakState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[userID]
}
