package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/pkg/logger"
)

// TaskService handles task operations. Authorization always goes through
// the owning plan: both plan members may create and edit tasks, only the
// mentor may delete them.
type TaskService struct {
	taskRepo repository.TaskRepositoryInterface
	idpRepo  repository.IDPRepositoryInterface
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repository.TaskRepositoryInterface, idpRepo repository.IDPRepositoryInterface) *TaskService {
	return &TaskService{taskRepo: taskRepo, idpRepo: idpRepo}
}

// Create adds a task to a plan the caller is a member of
func (s *TaskService) Create(ctx context.Context, actor *models.User, req *models.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.memberPlan(ctx, actor, req.IDPID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	task := &models.Task{
		IDPID:        req.IDPID,
		Title:        req.Title,
		Status:       status,
		Deadline:     req.Deadline,
		LinkedSkills: req.LinkedSkills,
	}
	if req.Description != "" {
		task.Description = &req.Description
	}
	if req.Priority != "" {
		task.Priority = &req.Priority
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("idp_id", task.IDPID),
		zap.Int64("user_id", actor.ID))
	return task, nil
}

// ListByIDP returns the tasks of a plan the caller is a member of
func (s *TaskService) ListByIDP(ctx context.Context, actor *models.User, idpID int64) ([]*models.Task, error) {
	if _, err := s.memberPlan(ctx, actor, idpID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByIDP(ctx, idpID)
}

// GetByID returns one task if the caller is a member of its plan
func (s *TaskService) GetByID(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberPlan(ctx, actor, task.IDPID); err != nil {
		return nil, err
	}
	return task, nil
}

// Update patches a task. Both plan members may update.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberPlan(ctx, actor, task.IDPID); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	logger.Info("task updated", zap.Int64("task_id", id), zap.Int64("user_id", actor.ID))
	return updated, nil
}

// Delete removes a task. Only the plan's mentor may delete.
func (s *TaskService) Delete(ctx context.Context, actor *models.User, id int64) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	idp, err := s.memberPlan(ctx, actor, task.IDPID)
	if err != nil {
		return err
	}
	if idp.MentorID != actor.ID {
		return ErrMentorOnly
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("task deleted", zap.Int64("task_id", id), zap.Int64("user_id", actor.ID))
	return nil
}

// memberPlan loads the plan and verifies the caller is one of its sides
func (s *TaskService) memberPlan(ctx context.Context, actor *models.User, idpID int64) (*models.IDP, error) {
	idp, err := s.idpRepo.GetByID(ctx, idpID)
	if err != nil {
		return nil, err
	}
	if err := planMemberCheck(actor, idp); err != nil {
		return nil, err
	}
	return idp, nil
}
