package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// TaskRepository manages assigned tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, assignedTo *string) ([]domain.Task, error)
	SetStatus(ctx context.Context, id string, status domain.TaskStatus) error
	MarkPenaltyApplied(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

const taskColumns = `id, assigned_to, title, description, task_type, status, start_date, end_date,
               penalty_applied, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (assigned_to, title, description, task_type, status, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		task.AssignedTo,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.StartDate,
		task.EndDate,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return mapWriteErr(err)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, task_type=$3, start_date=$4, end_date=$5, updated_at=NOW()
        WHERE id=$6`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query,
		task.Title,
		task.Description,
		task.Type,
		task.StartDate,
		task.EndDate,
		task.ID,
	))
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id))
}

func (r *taskRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 FOR UPDATE`, id))
}

// List returns tasks newest first, optionally restricted to one assignee.
func (r *taskRepository) List(ctx context.Context, assignedTo *string) ([]domain.Task, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if assignedTo != nil {
		rows, err = conn(ctx, r.pool).Query(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE assigned_to=$1 ORDER BY created_at DESC`, *assignedTo)
	} else {
		rows, err = conn(ctx, r.pool).Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

func (r *taskRepository) SetStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, status, id))
}

func (r *taskRepository) MarkPenaltyApplied(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET penalty_applied=TRUE, updated_at=NOW() WHERE id=$1`, id))
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id))
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.AssignedTo,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.StartDate,
		&task.EndDate,
		&task.PenaltyApplied,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}
