package models

import "time"

// TaskComment belongs to one task and one author
type TaskComment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	// UserName is the author's full name, joined in for list responses
	UserName string `json:"user_name,omitempty"`
}

// CreateCommentRequest posts a comment on a task
type CreateCommentRequest struct {
	TaskID  int64  `json:"task_id" binding:"required"`
	Comment string `json:"comment" binding:"required,max=10000"`
}

// UpdateCommentRequest replaces a comment's text
type UpdateCommentRequest struct {
	Comment string `json:"comment" binding:"required,max=10000"`
}
