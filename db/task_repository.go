package db

import (
	"context"
	"database/sql"
	"fmt"

	"taskquest/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, series_id, title, details, status, priority, created_at, updated_at,
 assigned_to, reviewed_by, score, team_id, recurrence, recurrence_end_date`

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.SeriesID, task.Title, task.Details, task.Status, task.Priority,
		task.CreatedAt, task.UpdatedAt, task.AssignedTo, task.ReviewedBy,
		task.Score, task.TeamID, task.Recurrence, task.RecurrenceEndDate)
	return err
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return update(ctx, r.db, task)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func update(ctx context.Context, ex execer, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, details = $2, status = $3, priority = $4,
	 updated_at = $5, assigned_to = $6, reviewed_by = $7
	 WHERE id = $8`

	res, err := ex.ExecContext(ctx, query,
		task.Title, task.Details, task.Status, task.Priority,
		task.UpdatedAt, task.AssignedTo, task.ReviewedBy, task.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ApproveWithNext persists an approval and the next materialized
// occurrence in one transaction, so a recurring series never ends up with
// an approval that lost its follow-up or an orphaned occurrence.
func (r *TaskRepository) ApproveWithNext(ctx context.Context, approved, next *models.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := update(ctx, tx, approved); err != nil {
		return fmt.Errorf("update approved task: %w", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.ExecContext(ctx, query,
		next.ID, next.SeriesID, next.Title, next.Details, next.Status, next.Priority,
		next.CreatedAt, next.UpdatedAt, next.AssignedTo, next.ReviewedBy,
		next.Score, next.TeamID, next.Recurrence, next.RecurrenceEndDate)
	if err != nil {
		return fmt.Errorf("insert next occurrence: %w", err)
	}

	return tx.Commit()
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *TaskRepository) All(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID, &task.SeriesID, &task.Title, &task.Details, &task.Status, &task.Priority,
		&task.CreatedAt, &task.UpdatedAt, &task.AssignedTo, &task.ReviewedBy,
		&task.Score, &task.TeamID, &task.Recurrence, &task.RecurrenceEndDate,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
