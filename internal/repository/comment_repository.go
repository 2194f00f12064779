package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idp-tracker/idp-api/internal/models"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

// CommentRepository handles task comment data access
type CommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.TaskComment) error {
	query := `
		INSERT INTO task_comments (task_id, user_id, comment)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, comment.TaskID, comment.UserID, comment.Comment).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID loads a comment by primary key
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.TaskComment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.comment, c.created_at, u.full_name
		FROM task_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	var c models.TaskComment
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.TaskID, &c.UserID, &c.Comment, &c.CreatedAt, &c.UserName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundError("comment")
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &c, nil
}

// ListByTask returns a task's comments oldest first, with author names
func (r *CommentRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.TaskComment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.comment, c.created_at, u.full_name
		FROM task_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.TaskComment{}
	for rows.Next() {
		var c models.TaskComment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Comment, &c.CreatedAt, &c.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// UpdateText replaces the comment body and returns the updated comment
func (r *CommentRepository) UpdateText(ctx context.Context, id int64, text string) (*models.TaskComment, error) {
	_, err := r.pool.Exec(ctx, "UPDATE task_comments SET comment = $2 WHERE id = $1", id, text)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM task_comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundError("comment")
	}
	return nil
}
