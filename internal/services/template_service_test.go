package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/idp-tracker/idp-api/internal/cache"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/services"
)

func TestTemplateService_Categories_CacheDisabled(t *testing.T) {
	mockRepo := new(MockTemplateRepository)
	service := services.NewTemplateService(mockRepo, nil, false)
	ctx := context.Background()

	categories := []*models.TemplateCategory{{Category: "Backend", Count: 12}}
	mockRepo.On("FetchCategoriesFromDB", ctx).Return(categories, nil).Once()

	got, err := service.Categories(ctx)

	assert.NoError(t, err)
	assert.Equal(t, categories, got)
	mockRepo.AssertExpectations(t)
}

func TestTemplateService_Categories_CachedAfterFirstRead(t *testing.T) {
	mockRepo := new(MockTemplateRepository)
	categories := []*models.TemplateCategory{{Category: "Backend", Count: 12}}
	mockRepo.On("FetchCategoriesFromDB", mock.Anything).Return(categories, nil).Once()

	templateCache := cache.NewTemplateCache(
		mockRepo.FetchCategoriesFromDB,
		mockRepo.FetchByCategoryFromDB,
		600,
	)
	service := services.NewTemplateService(mockRepo, templateCache, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := service.Categories(ctx)
		assert.NoError(t, err)
		assert.Equal(t, categories, got)
	}

	// A single database read serves all three calls
	mockRepo.AssertExpectations(t)
}

func TestTemplateService_ByCategory_TrimsInput(t *testing.T) {
	mockRepo := new(MockTemplateRepository)
	service := services.NewTemplateService(mockRepo, nil, false)
	ctx := context.Background()

	templates := []*models.TaskTemplate{{ID: 1, Category: "Backend", SkillName: "SQL"}}
	mockRepo.On("FetchByCategoryFromDB", ctx, "Backend").Return(templates, nil).Once()

	got, err := service.ByCategory(ctx, "  Backend ")

	assert.NoError(t, err)
	assert.Equal(t, templates, got)
	mockRepo.AssertExpectations(t)
}

func TestTemplateService_Search(t *testing.T) {
	mockRepo := new(MockTemplateRepository)
	service := services.NewTemplateService(mockRepo, nil, false)
	ctx := context.Background()

	templates := []*models.TaskTemplate{{ID: 1, Category: "Backend", SkillName: "SQL", Level: ptr(2)}}
	mockRepo.On("Search", ctx, models.TemplateSearchQuery{
		Query:    "sql",
		Category: "Backend",
		Level:    ptr(2),
	}).Return(templates, nil).Once()

	got, err := service.Search(ctx, models.TemplateSearchQuery{
		Query:    " sql ",
		Category: " Backend ",
		Level:    ptr(2),
	})

	assert.NoError(t, err)
	assert.Equal(t, templates, got)
	mockRepo.AssertExpectations(t)
}

func TestTemplateService_GetByID(t *testing.T) {
	mockRepo := new(MockTemplateRepository)
	service := services.NewTemplateService(mockRepo, nil, false)
	ctx := context.Background()

	template := &models.TaskTemplate{ID: 5, Category: "Backend", SkillName: "SQL"}
	mockRepo.On("GetByID", ctx, int64(5)).Return(template, nil).Once()

	got, err := service.GetByID(ctx, 5)

	assert.NoError(t, err)
	assert.Equal(t, template, got)
}
