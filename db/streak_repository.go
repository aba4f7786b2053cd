package db

import (
	"context"
	"database/sql"

	"taskquest/streak"
)

type StreakRepository struct {
	db *sql.DB
}

func NewStreakRepository(db *sql.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

func (r *StreakRepository) Upsert(ctx context.Context, rec streak.Record) error {
	query := `INSERT INTO streaks (user_id, current_streak, longest_streak, last_evaluated_day)
	 VALUES ($1, $2, $3, $4)
	 ON CONFLICT (user_id) DO UPDATE SET
	   current_streak = EXCLUDED.current_streak,
	   longest_streak = EXCLUDED.longest_streak,
	   last_evaluated_day = EXCLUDED.last_evaluated_day`

	_, err := r.db.ExecContext(ctx, query,
		rec.UserID, rec.State.CurrentStreak, rec.State.LongestStreak, rec.LastEvaluatedDay)
	return err
}

func (r *StreakRepository) All(ctx context.Context) ([]streak.Record, error) {
	query := `SELECT user_id, current_streak, longest_streak, last_evaluated_day FROM streaks`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []streak.Record
	for rows.Next() {
		var rec streak.Record
		if err := rows.Scan(&rec.UserID, &rec.State.CurrentStreak,
			&rec.State.LongestStreak, &rec.LastEvaluatedDay); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
