package services

import (
	"context"
	"strings"

	"github.com/idp-tracker/idp-api/internal/cache"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/pkg/metrics"
)

// TemplateService serves the read-only task template catalog. Category
// listings go through the in-memory cache; search always hits the database
// because the filter space is too large to cache usefully.
type TemplateService struct {
	templateRepo repository.TemplateRepositoryInterface
	cache        *cache.TemplateCache
	cacheEnabled bool
}

// NewTemplateService creates a new template service. A nil cache or
// cacheEnabled=false sends all reads straight to the database.
func NewTemplateService(templateRepo repository.TemplateRepositoryInterface, templateCache *cache.TemplateCache, cacheEnabled bool) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		cache:        templateCache,
		cacheEnabled: cacheEnabled && templateCache != nil,
	}
}

// Categories returns all template categories with their template counts
func (s *TemplateService) Categories(ctx context.Context) ([]*models.TemplateCategory, error) {
	if s.cacheEnabled {
		return s.cache.GetCategories(ctx)
	}
	return s.templateRepo.FetchCategoriesFromDB(ctx)
}

// ByCategory returns the templates in one category, ordered by skill and level
func (s *TemplateService) ByCategory(ctx context.Context, category string) ([]*models.TaskTemplate, error) {
	category = strings.TrimSpace(category)
	if s.cacheEnabled {
		return s.cache.GetByCategory(ctx, category)
	}
	return s.templateRepo.FetchByCategoryFromDB(ctx, category)
}

// Search runs a case-insensitive substring search over skill names, goals,
// and descriptions, optionally narrowed by category and level
func (s *TemplateService) Search(ctx context.Context, q models.TemplateSearchQuery) ([]*models.TaskTemplate, error) {
	q.Query = strings.TrimSpace(q.Query)
	q.Category = strings.TrimSpace(q.Category)

	metrics.TemplateSearches.Inc()
	return s.templateRepo.Search(ctx, q)
}

// GetByID returns one template
func (s *TemplateService) GetByID(ctx context.Context, id int64) (*models.TaskTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}
