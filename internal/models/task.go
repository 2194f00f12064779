package models

import "time"

// TaskStatus is the kanban column a task sits in
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether the status is one of the known values
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

// Task belongs to exactly one development plan
type Task struct {
	ID           int64          `json:"id"`
	IDPID        int64          `json:"idp_id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description,omitempty"`
	Status       TaskStatus     `json:"status"`
	Priority     *string        `json:"priority,omitempty"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
	LinkedSkills map[string]any `json:"linked_skills,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// CreateTaskRequest adds a task to an existing plan
type CreateTaskRequest struct {
	IDPID        int64          `json:"idp_id" binding:"required"`
	Title        string         `json:"title" binding:"required,max=500"`
	Description  string         `json:"description" binding:"omitempty,max=10000"`
	Status       TaskStatus     `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority     string         `json:"priority" binding:"omitempty,max=64"`
	Deadline     *time.Time     `json:"deadline"`
	LinkedSkills map[string]any `json:"linked_skills"`
}

// UpdateTaskRequest patches a task. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title        *string        `json:"title" binding:"omitempty,max=500"`
	Description  *string        `json:"description" binding:"omitempty,max=10000"`
	Status       *TaskStatus    `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority     *string        `json:"priority" binding:"omitempty,max=64"`
	Deadline     *time.Time     `json:"deadline"`
	LinkedSkills map[string]any `json:"linked_skills"`
}
