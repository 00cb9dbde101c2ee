package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-manager-api/internal/models"
)

const taskColumns = "id, owner_id, title, description, status, created_at"

// TaskRepository persists tasks in the tasks table.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t    models.Task
		desc sql.NullString
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &desc, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return &t, nil
}

// Create stores a task owned by ownerID. The id and created_at come from the database.
func (r *TaskRepository) Create(ctx context.Context, ownerID int64, in models.NewTask) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		"INSERT INTO tasks (owner_id, title, description, status) VALUES ($1, $2, $3, $4) RETURNING "+taskColumns,
		ownerID, in.Title, in.Description, string(in.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		return nil, mapReadError("get task", err)
	}
	return t, nil
}

// OwnerOf returns only the owner id of a task.
func (r *TaskRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var owner int64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM tasks WHERE id = $1", id).Scan(&owner)
	if err != nil {
		return 0, mapReadError("get task owner", err)
	}
	return owner, nil
}

// List returns tasks ordered by id. A nil owner lists every task.
func (r *TaskRepository) List(ctx context.Context, owner *int64, page models.Page) ([]models.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if owner == nil {
		rows, err = r.db.QueryContext(ctx,
			"SELECT "+taskColumns+" FROM tasks ORDER BY id OFFSET $1 LIMIT $2",
			page.Skip, page.Limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			"SELECT "+taskColumns+" FROM tasks WHERE owner_id = $1 ORDER BY id OFFSET $2 LIMIT $3",
			*owner, page.Skip, page.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of p in one statement.
func (r *TaskRepository) Update(ctx context.Context, id int64, p models.TaskPatch) (*models.Task, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = COALESCE($1::text, title),
			description = COALESCE($2::text, description),
			status = COALESCE($3::text, status)
		WHERE id = $4
		RETURNING `+taskColumns,
		p.Title, p.Description, status, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
