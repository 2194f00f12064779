package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idp-tracker/idp-api/internal/models"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

const taskColumns = "id, idp_id, title, description, status, priority, deadline, linked_skills, created_at"

// TaskRepository handles task data access
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var linkedSkills []byte
	err := row.Scan(&t.ID, &t.IDPID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.Deadline, &linkedSkills, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundError("task")
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	if len(linkedSkills) > 0 {
		if err := json.Unmarshal(linkedSkills, &t.LinkedSkills); err != nil {
			return nil, fmt.Errorf("failed to decode linked skills: %w", err)
		}
	}
	return &t, nil
}

func marshalLinkedSkills(skills map[string]any) (any, error) {
	if skills == nil {
		return nil, nil
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode linked skills: %w", err)
	}
	return data, nil
}

// Create inserts a new task under its plan
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	skills, err := marshalLinkedSkills(task.LinkedSkills)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO tasks (idp_id, title, description, status, priority, deadline, linked_skills)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7::jsonb)
		RETURNING %s`, taskColumns)

	var description any
	if task.Description != nil {
		description = *task.Description
	}
	var priority string
	if task.Priority != nil {
		priority = *task.Priority
	}

	created, err := scanTask(r.pool.QueryRow(ctx, query,
		task.IDPID, task.Title, description, task.Status, priority, task.Deadline, skills))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	*task = *created
	return nil
}

// GetByID loads a task by primary key
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

// ListByIDP returns all tasks of a plan. Ordering is left to the client.
func (r *TaskRepository) ListByIDP(ctx context.Context, idpID int64) ([]*models.Task, error) {
	tasks, err := listTasks(ctx, r.pool, idpID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Task, len(tasks))
	for i := range tasks {
		out[i] = &tasks[i]
	}
	return out, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listTasks(ctx context.Context, q querier, idpID int64) ([]models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE idp_id = $1 ORDER BY id", taskColumns)
	rows, err := q.Query(ctx, query, idpID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of req and returns the updated task
func (r *TaskRepository) Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	sets := []string{}
	args := []any{id}

	addSet := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if req.Title != nil {
		addSet("title = $%d", *req.Title)
	}
	if req.Description != nil {
		addSet("description = $%d", *req.Description)
	}
	if req.Status != nil {
		addSet("status = $%d", *req.Status)
	}
	if req.Priority != nil {
		addSet("priority = $%d", *req.Priority)
	}
	if req.Deadline != nil {
		addSet("deadline = $%d", *req.Deadline)
	}
	if req.LinkedSkills != nil {
		skills, err := marshalLinkedSkills(req.LinkedSkills)
		if err != nil {
			return nil, err
		}
		addSet("linked_skills = $%d::jsonb", skills)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $1 RETURNING %s",
		strings.Join(sets, ", "), taskColumns)

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a task. Comments go with it via FK cascade.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundError("task")
	}
	return nil
}
