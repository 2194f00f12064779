package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
	"github.com/idp-tracker/idp-api/pkg/auth"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			TTLHours:   24,
			CookieName: "session_token",
		},
	}
}

func TestAuthService_Login_MentorSuccess(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	mentor := &models.User{
		ID:           1,
		FullName:     "Maria Mentor",
		Email:        ptr("maria@example.com"),
		PasswordHash: &hash,
		Role:         models.RoleMentor,
	}

	mockUsers.On("GetMentorByEmail", ctx, "maria@example.com").Return(mentor, nil).Once()
	mockSessions.On("Create", ctx, mock.MatchedBy(func(s *models.Session) bool {
		return s.UserID == 1 && s.IsActive && s.Token != "" &&
			s.ExpiresAt.After(time.Now().Add(23*time.Hour))
	})).Return(nil).Once()

	user, token, err := service.Login(ctx, &models.LoginRequest{
		Email:    "Maria@Example.com",
		Password: "correct horse battery",
	})

	assert.NoError(t, err)
	assert.Equal(t, mentor, user)
	assert.NotEmpty(t, token)
	mockUsers.AssertExpectations(t)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	hash, err := auth.HashPassword("the real password")
	require.NoError(t, err)
	mentor := &models.User{ID: 1, Role: models.RoleMentor, PasswordHash: &hash}

	mockUsers.On("GetMentorByEmail", ctx, "maria@example.com").Return(mentor, nil).Once()

	user, token, err := service.Login(ctx, &models.LoginRequest{
		Email:    "maria@example.com",
		Password: "a guess",
	})

	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Nil(t, user)
	assert.Empty(t, token)
	mockSessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownMentor(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mockUsers.On("GetMentorByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFoundError("user")).Once()

	_, _, err := service.Login(ctx, &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	// Unknown users and wrong passwords are indistinguishable
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_Login_MenteeAccessCode(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mentee := &models.User{
		ID:         7,
		FullName:   "Misha Mentee",
		Role:       models.RoleMentee,
		AccessCode: ptr("idp-A1B2C"),
	}

	mockUsers.On("GetMenteeByAccessCode", ctx, "idp-A1B2C").Return(mentee, nil).Once()
	mockSessions.On("Create", ctx, mock.AnythingOfType("*models.Session")).Return(nil).Once()

	user, token, err := service.Login(ctx, &models.LoginRequest{AccessCode: "idp-A1B2C"})

	assert.NoError(t, err)
	assert.Equal(t, mentee, user)
	assert.NotEmpty(t, token)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_Login_InvalidAccessCode(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mockUsers.On("GetMenteeByAccessCode", ctx, "idp-WRONG").
		Return(nil, apperrors.NotFoundError("user")).Once()

	_, _, err := service.Login(ctx, &models.LoginRequest{AccessCode: "idp-WRONG"})

	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())

	_, _, err := service.Login(context.Background(), &models.LoginRequest{})

	assert.ErrorIs(t, err, services.ErrMissingCredentials)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	mockUsers.AssertNotCalled(t, "GetMentorByEmail", mock.Anything, mock.Anything)
	mockUsers.AssertNotCalled(t, "GetMenteeByAccessCode", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterMentor(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	created := &models.User{ID: 3, FullName: "New Mentor", Role: models.RoleMentor}
	mockUsers.On("CreateMentor", ctx, "New Mentor", "new@example.com",
		mock.MatchedBy(func(hash string) bool {
			return auth.VerifyPassword("longenoughpassword", hash)
		}), "Engineer", "Senior").Return(created, nil).Once()

	user, err := service.RegisterMentor(ctx, &models.RegisterRequest{
		FullName: "New Mentor",
		Email:    "New@Example.com",
		Password: "longenoughpassword",
		Position: "Engineer",
		Grade:    "Senior",
	})

	assert.NoError(t, err)
	assert.Equal(t, created, user)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_RegisterMentor_DuplicateEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mockUsers.On("CreateMentor", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ConflictError("email already registered")).Once()

	user, err := service.RegisterMentor(ctx, &models.RegisterRequest{
		FullName: "Dup",
		Email:    "dup@example.com",
		Password: "longenoughpassword",
	})

	assert.Nil(t, user)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestAuthService_ResolveSession(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	session := &models.Session{ID: 5, UserID: 1, IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.User{ID: 1, Role: models.RoleMentor}

	mockSessions.On("GetActiveByToken", ctx, "tok").Return(session, nil).Once()
	mockUsers.On("GetByID", ctx, int64(1)).Return(user, nil).Once()

	resolved, err := service.ResolveSession(ctx, "tok")

	assert.NoError(t, err)
	assert.Equal(t, user, resolved)
}

func TestAuthService_ResolveSession_UnknownToken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mockSessions.On("GetActiveByToken", ctx, "dead").
		Return(nil, apperrors.NotFoundError("session")).Once()

	resolved, err := service.ResolveSession(ctx, "dead")

	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_ResolveSession_OrphanedUser(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	session := &models.Session{ID: 7, UserID: 42, IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}
	mockSessions.On("GetActiveByToken", ctx, "tok").Return(session, nil).Once()
	mockUsers.On("GetByID", ctx, int64(42)).
		Return(nil, apperrors.NotFoundError("user")).Once()

	resolved, err := service.ResolveSession(ctx, "tok")

	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_ResolveSession_EmptyToken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())

	resolved, err := service.ResolveSession(context.Background(), "")

	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	mockSessions.AssertNotCalled(t, "GetActiveByToken", mock.Anything, mock.Anything)
}

func TestAuthService_RevokeSession(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := services.NewAuthService(mockUsers, mockSessions, testConfig())
	ctx := context.Background()

	mockSessions.On("Deactivate", ctx, "tok").Return(nil).Once()

	assert.NoError(t, service.RevokeSession(ctx, "tok"))
	mockSessions.AssertExpectations(t)
}

func TestAuthService_SessionTTLSeconds(t *testing.T) {
	service := services.NewAuthService(new(MockUserRepository), new(MockSessionRepository), testConfig())
	assert.Equal(t, 24*3600, service.SessionTTLSeconds())
}
