package db

import (
	"database/sql"
)

func Connect(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate creates the schema. The DDL sticks to types both sqlite and
// postgres accept.
func Migrate(db *sql.DB) error {
	ddl := `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  series_id TEXT NOT NULL,
  title TEXT NOT NULL,
  details TEXT,
  status TEXT NOT NULL,
  priority TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP,
  assigned_to TEXT NOT NULL,
  reviewed_by TEXT,
  score INTEGER NOT NULL,
  team_id TEXT,
  recurrence TEXT NOT NULL,
  recurrence_end_date TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_series_id ON tasks(series_id);

CREATE TABLE IF NOT EXISTS streaks (
  user_id TEXT PRIMARY KEY,
  current_streak INTEGER NOT NULL,
  longest_streak INTEGER NOT NULL,
  last_evaluated_day TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
`
	_, err := db.Exec(ddl)
	return err
}
