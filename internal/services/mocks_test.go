package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepositoryInterface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetMentorByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetMenteeByAccessCode(ctx context.Context, accessCode string) (*models.User, error) {
	args := m.Called(ctx, accessCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateMentor(ctx context.Context, fullName, email, passwordHash, position, grade string) (*models.User, error) {
	args := m.Called(ctx, fullName, email, passwordHash, position, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepositoryInterface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetActiveByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Deactivate(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockIDPRepository is a mock implementation of IDPRepositoryInterface
type MockIDPRepository struct {
	mock.Mock
}

func (m *MockIDPRepository) CreateWithMentee(ctx context.Context, mentorID int64, mentee repository.MenteeUpsert) (*models.IDP, error) {
	args := m.Called(ctx, mentorID, mentee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IDP), args.Error(1)
}

func (m *MockIDPRepository) GetByID(ctx context.Context, id int64) (*models.IDP, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IDP), args.Error(1)
}

func (m *MockIDPRepository) ListByUser(ctx context.Context, userID int64, role models.UserRole, includeAll bool) ([]*models.IDP, error) {
	args := m.Called(ctx, userID, role, includeAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.IDP), args.Error(1)
}

func (m *MockIDPRepository) ListMentees(ctx context.Context, mentorID int64) ([]*models.User, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockIDPRepository) UpdateStatus(ctx context.Context, id int64, status models.IDPStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockIDPRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTaskRepository is a mock implementation of TaskRepositoryInterface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByIDP(ctx context.Context, idpID int64) ([]*models.Task, error) {
	args := m.Called(ctx, idpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository is a mock implementation of CommentRepositoryInterface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.TaskComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.TaskComment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskComment), args.Error(1)
}

func (m *MockCommentRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.TaskComment, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TaskComment), args.Error(1)
}

func (m *MockCommentRepository) UpdateText(ctx context.Context, id int64, text string) (*models.TaskComment, error) {
	args := m.Called(ctx, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskComment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTemplateRepository is a mock implementation of TemplateRepositoryInterface
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FetchCategoriesFromDB(ctx context.Context) ([]*models.TemplateCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TemplateCategory), args.Error(1)
}

func (m *MockTemplateRepository) FetchByCategoryFromDB(ctx context.Context, category string) ([]*models.TaskTemplate, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TaskTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Search(ctx context.Context, q models.TemplateSearchQuery) ([]*models.TaskTemplate, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TaskTemplate), args.Error(1)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id int64) (*models.TaskTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskTemplate), args.Error(1)
}

func (m *MockTemplateRepository) BulkInsert(ctx context.Context, templates []*models.TaskTemplate) (int64, error) {
	args := m.Called(ctx, templates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTemplateRepository) ExistingKeys(ctx context.Context, source string) (map[string]struct{}, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}
