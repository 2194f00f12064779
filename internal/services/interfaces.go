package services

import (
	"context"

	"github.com/idp-tracker/idp-api/internal/models"
)

// AuthServiceInterface defines the authentication and session contract
type AuthServiceInterface interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	RegisterMentor(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	ResolveSession(ctx context.Context, token string) (*models.User, error)
	RevokeSession(ctx context.Context, token string) error
	SessionTTLSeconds() int
}

// IDPServiceInterface defines development plan operations
type IDPServiceInterface interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateIDPRequest) (*models.IDP, error)
	List(ctx context.Context, actor *models.User, includeAll bool) ([]*models.IDP, error)
	GetByID(ctx context.Context, actor *models.User, id int64) (*models.IDP, error)
	ListMentees(ctx context.Context, actor *models.User) ([]*models.User, error)
	Close(ctx context.Context, actor *models.User, id int64) error
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// TaskServiceInterface defines task operations
type TaskServiceInterface interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateTaskRequest) (*models.Task, error)
	ListByIDP(ctx context.Context, actor *models.User, idpID int64) ([]*models.Task, error)
	GetByID(ctx context.Context, actor *models.User, id int64) (*models.Task, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// CommentServiceInterface defines task comment operations
type CommentServiceInterface interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateCommentRequest) (*models.TaskComment, error)
	ListByTask(ctx context.Context, actor *models.User, taskID int64) ([]*models.TaskComment, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateCommentRequest) (*models.TaskComment, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// TemplateServiceInterface defines read access to the template catalog
type TemplateServiceInterface interface {
	Categories(ctx context.Context) ([]*models.TemplateCategory, error)
	ByCategory(ctx context.Context, category string) ([]*models.TaskTemplate, error)
	Search(ctx context.Context, q models.TemplateSearchQuery) ([]*models.TaskTemplate, error)
	GetByID(ctx context.Context, id int64) (*models.TaskTemplate, error)
}

// UserServiceInterface defines profile operations
type UserServiceInterface interface {
	UpdateProfile(ctx context.Context, actor *models.User, req *models.UpdateProfileRequest) (*models.User, error)
}
