package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/internal/services"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

var (
	testMentor = &models.User{ID: 1, FullName: "Maria Mentor", Role: models.RoleMentor}
	testMentee = &models.User{ID: 2, FullName: "Misha Mentee", Role: models.RoleMentee}
	outsider   = &models.User{ID: 99, FullName: "Oleg Outsider", Role: models.RoleMentor}
)

func TestIDPService_Create(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	expected := &models.IDP{ID: 10, MentorID: 1, MenteeID: 2, Status: models.IDPStatusActive}
	mockRepo.On("CreateWithMentee", ctx, int64(1), mock.MatchedBy(func(m repository.MenteeUpsert) bool {
		return m.Email == "misha@example.com" &&
			m.FullName == "Misha Mentee" &&
			strings.HasPrefix(m.AccessCode, "idp-")
	})).Return(expected, nil).Once()

	idp, err := service.Create(ctx, testMentor, &models.CreateIDPRequest{
		MenteeFullName: "  Misha Mentee ",
		MenteeEmail:    "Misha@Example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, expected, idp)
	mockRepo.AssertExpectations(t)
}

func TestIDPService_Create_MenteeForbidden(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)

	idp, err := service.Create(context.Background(), testMentee, &models.CreateIDPRequest{
		MenteeFullName: "Someone",
		MenteeEmail:    "someone@example.com",
	})

	assert.Nil(t, idp)
	assert.ErrorIs(t, err, services.ErrMentorOnly)
	mockRepo.AssertNotCalled(t, "CreateWithMentee", mock.Anything, mock.Anything, mock.Anything)
}

func TestIDPService_Create_RetriesOnAccessCodeCollision(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	expected := &models.IDP{ID: 11, MentorID: 1, MenteeID: 2, Status: models.IDPStatusActive}
	mockRepo.On("CreateWithMentee", ctx, int64(1), mock.Anything).
		Return(nil, repository.ErrAccessCodeCollision).Once()
	mockRepo.On("CreateWithMentee", ctx, int64(1), mock.Anything).
		Return(expected, nil).Once()

	idp, err := service.Create(ctx, testMentor, &models.CreateIDPRequest{
		MenteeFullName: "Misha Mentee",
		MenteeEmail:    "misha@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, expected, idp)
	mockRepo.AssertExpectations(t)
}

func TestIDPService_Create_GivesUpAfterRepeatedCollisions(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateWithMentee", ctx, int64(1), mock.Anything).
		Return(nil, repository.ErrAccessCodeCollision).Times(3)

	idp, err := service.Create(ctx, testMentor, &models.CreateIDPRequest{
		MenteeFullName: "Misha Mentee",
		MenteeEmail:    "misha@example.com",
	})

	assert.Nil(t, idp)
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	mockRepo.AssertExpectations(t)
}

func TestIDPService_Create_DuplicateActivePlan(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateWithMentee", ctx, int64(1), mock.Anything).
		Return(nil, repository.ErrDuplicateActivePlan).Once()

	idp, err := service.Create(ctx, testMentor, &models.CreateIDPRequest{
		MenteeFullName: "Misha Mentee",
		MenteeEmail:    "misha@example.com",
	})

	assert.Nil(t, idp)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestIDPService_GetByID_MemberAccess(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	plan := &models.IDP{ID: 10, MentorID: 1, MenteeID: 2, Status: models.IDPStatusActive}
	mockRepo.On("GetByID", ctx, int64(10)).Return(plan, nil)

	got, err := service.GetByID(ctx, testMentor, 10)
	assert.NoError(t, err)
	assert.Equal(t, plan, got)

	got, err = service.GetByID(ctx, testMentee, 10)
	assert.NoError(t, err)
	assert.Equal(t, plan, got)

	got, err = service.GetByID(ctx, outsider, 10)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, services.ErrNotPlanMember)
}

func TestIDPService_GetByID_NotFoundBeforeAccessCheck(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(404)).
		Return(nil, apperrors.NotFoundError("plan")).Once()

	got, err := service.GetByID(ctx, outsider, 404)

	assert.Nil(t, got)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestIDPService_List(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	plans := []*models.IDP{{ID: 10, MentorID: 1, MenteeID: 2}}
	mockRepo.On("ListByUser", ctx, int64(2), models.RoleMentee, true).Return(plans, nil).Once()

	got, err := service.List(ctx, testMentee, true)

	assert.NoError(t, err)
	assert.Equal(t, plans, got)
	mockRepo.AssertExpectations(t)
}

func TestIDPService_ListMentees_MentorOnly(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	mentees := []*models.User{testMentee}
	mockRepo.On("ListMentees", ctx, int64(1)).Return(mentees, nil).Once()

	got, err := service.ListMentees(ctx, testMentor)
	assert.NoError(t, err)
	assert.Equal(t, mentees, got)

	got, err = service.ListMentees(ctx, testMentee)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, services.ErrMentorOnly)
}

func TestIDPService_Close(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	plan := &models.IDP{ID: 10, MentorID: 1, MenteeID: 2, Status: models.IDPStatusActive}
	mockRepo.On("GetByID", ctx, int64(10)).Return(plan, nil)
	mockRepo.On("UpdateStatus", ctx, int64(10), models.IDPStatusCompleted).Return(nil).Once()

	assert.NoError(t, service.Close(ctx, testMentor, 10))

	// The mentee of the plan cannot close it
	err := service.Close(ctx, testMentee, 10)
	assert.ErrorIs(t, err, services.ErrNotPlanMember)
	mockRepo.AssertExpectations(t)
}

func TestIDPService_Delete(t *testing.T) {
	mockRepo := new(MockIDPRepository)
	service := services.NewIDPService(mockRepo)
	ctx := context.Background()

	plan := &models.IDP{ID: 10, MentorID: 1, MenteeID: 2, Status: models.IDPStatusActive}
	mockRepo.On("GetByID", ctx, int64(10)).Return(plan, nil)
	mockRepo.On("Delete", ctx, int64(10)).Return(nil).Once()

	assert.NoError(t, service.Delete(ctx, testMentor, 10))

	err := service.Delete(ctx, testMentee, 10)
	assert.ErrorIs(t, err, services.ErrNotPlanMember)
	mockRepo.AssertExpectations(t)
}
