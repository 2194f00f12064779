package repository

import (
	"context"

	"github.com/idp-tracker/idp-api/internal/models"
)

// UserRepositoryInterface defines the contract for user data access
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetMentorByEmail(ctx context.Context, email string) (*models.User, error)
	GetMenteeByAccessCode(ctx context.Context, accessCode string) (*models.User, error)
	CreateMentor(ctx context.Context, fullName, email, passwordHash, position, grade string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.User, error)
	EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error)
}

// SessionRepositoryInterface defines the contract for session data access
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *models.Session) error
	GetActiveByToken(ctx context.Context, token string) (*models.Session, error)
	Deactivate(ctx context.Context, token string) error
}

// MenteeUpsert carries the mentee fields for IDP creation. AccessCode is
// only applied when the mentee has no code yet.
type MenteeUpsert struct {
	FullName   string
	Email      string
	Position   string
	Grade      string
	AccessCode string
}

// IDPRepositoryInterface defines the contract for development plan data access
type IDPRepositoryInterface interface {
	CreateWithMentee(ctx context.Context, mentorID int64, mentee MenteeUpsert) (*models.IDP, error)
	GetByID(ctx context.Context, id int64) (*models.IDP, error)
	ListByUser(ctx context.Context, userID int64, role models.UserRole, includeAll bool) ([]*models.IDP, error)
	ListMentees(ctx context.Context, mentorID int64) ([]*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.IDPStatus) error
	Delete(ctx context.Context, id int64) error
}

// TaskRepositoryInterface defines the contract for task data access
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	ListByIDP(ctx context.Context, idpID int64) ([]*models.Task, error)
	Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepositoryInterface defines the contract for task comment data access
type CommentRepositoryInterface interface {
	Create(ctx context.Context, comment *models.TaskComment) error
	GetByID(ctx context.Context, id int64) (*models.TaskComment, error)
	ListByTask(ctx context.Context, taskID int64) ([]*models.TaskComment, error)
	UpdateText(ctx context.Context, id int64, text string) (*models.TaskComment, error)
	Delete(ctx context.Context, id int64) error
}

// TemplateRepositoryInterface defines the contract for the template catalog
type TemplateRepositoryInterface interface {
	FetchCategoriesFromDB(ctx context.Context) ([]*models.TemplateCategory, error)
	FetchByCategoryFromDB(ctx context.Context, category string) ([]*models.TaskTemplate, error)
	Search(ctx context.Context, q models.TemplateSearchQuery) ([]*models.TaskTemplate, error)
	GetByID(ctx context.Context, id int64) (*models.TaskTemplate, error)
	BulkInsert(ctx context.Context, templates []*models.TaskTemplate) (int64, error)
	ExistingKeys(ctx context.Context, source string) (map[string]struct{}, error)
}
