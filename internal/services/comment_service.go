package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
	"github.com/idp-tracker/idp-api/pkg/logger"
)

// ErrNotCommentAuthor is returned when someone other than the author
// tries to edit or delete a comment
var ErrNotCommentAuthor = apperrors.AccessDeniedError("only the author can modify a comment")

// CommentService handles task comment operations. Reading and posting
// require plan membership; editing and deleting require authorship.
type CommentService struct {
	commentRepo repository.CommentRepositoryInterface
	taskRepo    repository.TaskRepositoryInterface
	idpRepo     repository.IDPRepositoryInterface
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repository.CommentRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
	idpRepo repository.IDPRepositoryInterface,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		idpRepo:     idpRepo,
	}
}

// Create posts a comment on a task in a plan the caller is a member of
func (s *CommentService) Create(ctx context.Context, actor *models.User, req *models.CreateCommentRequest) (*models.TaskComment, error) {
	if err := s.taskMemberCheck(ctx, actor, req.TaskID); err != nil {
		return nil, err
	}

	comment := &models.TaskComment{
		TaskID:  req.TaskID,
		UserID:  actor.ID,
		Comment: req.Comment,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.UserName = actor.FullName

	logger.Info("comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("task_id", comment.TaskID),
		zap.Int64("user_id", actor.ID))
	return comment, nil
}

// ListByTask returns a task's comments oldest first
func (s *CommentService) ListByTask(ctx context.Context, actor *models.User, taskID int64) ([]*models.TaskComment, error) {
	if err := s.taskMemberCheck(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTask(ctx, taskID)
}

// Update replaces a comment's text. Author only.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateCommentRequest) (*models.TaskComment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID {
		return nil, ErrNotCommentAuthor
	}
	return s.commentRepo.UpdateText(ctx, id, req.Comment)
}

// Delete removes a comment. Author only.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id int64) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID {
		return ErrNotCommentAuthor
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("comment deleted", zap.Int64("comment_id", id), zap.Int64("user_id", actor.ID))
	return nil
}

// taskMemberCheck walks comment -> task -> plan and verifies membership
func (s *CommentService) taskMemberCheck(ctx context.Context, actor *models.User, taskID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	idp, err := s.idpRepo.GetByID(ctx, task.IDPID)
	if err != nil {
		return err
	}
	return planMemberCheck(actor, idp)
}
