package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

func TestUserService_UpdateProfile(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := services.NewUserService(mockUsers)
	ctx := context.Background()

	req := &models.UpdateProfileRequest{FullName: ptr("Maria M."), Position: ptr("Staff Engineer")}
	updated := &models.User{ID: 1, FullName: "Maria M.", Role: models.RoleMentor, Position: ptr("Staff Engineer")}
	mockUsers.On("UpdateProfile", ctx, int64(1), req).Return(updated, nil).Once()

	got, err := service.UpdateProfile(ctx, testMentor, req)

	assert.NoError(t, err)
	assert.Equal(t, updated, got)
	// No email change, so no uniqueness lookup
	mockUsers.AssertNotCalled(t, "EmailTakenByOther", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfile_EmailNormalizedAndChecked(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := services.NewUserService(mockUsers)
	ctx := context.Background()

	req := &models.UpdateProfileRequest{Email: ptr("  New@Example.com ")}
	updated := &models.User{ID: 1, FullName: "Maria Mentor", Email: ptr("new@example.com")}
	mockUsers.On("EmailTakenByOther", ctx, "new@example.com", int64(1)).Return(false, nil).Once()
	mockUsers.On("UpdateProfile", ctx, int64(1), mock.MatchedBy(func(r *models.UpdateProfileRequest) bool {
		return r.Email != nil && *r.Email == "new@example.com"
	})).Return(updated, nil).Once()

	got, err := service.UpdateProfile(ctx, testMentor, req)

	assert.NoError(t, err)
	assert.Equal(t, updated, got)
	mockUsers.AssertExpectations(t)
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := services.NewUserService(mockUsers)
	ctx := context.Background()

	req := &models.UpdateProfileRequest{Email: ptr("taken@example.com")}
	mockUsers.On("EmailTakenByOther", ctx, "taken@example.com", int64(1)).Return(true, nil).Once()

	got, err := service.UpdateProfile(ctx, testMentor, req)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	mockUsers.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}
