package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/pkg/logger"
	"github.com/idp-tracker/idp-api/pkg/metrics"
)

const (
	cacheName         = "templates"
	categoriesKey     = "categories"
	categoryKeyPrefix = "category:"
)

// CategoriesFetcher loads the catalog categories from storage
type CategoriesFetcher func(ctx context.Context) ([]*models.TemplateCategory, error)

// ByCategoryFetcher loads one category's templates from storage
type ByCategoryFetcher func(ctx context.Context, category string) ([]*models.TaskTemplate, error)

// TemplateCache is an in-memory cache over the read-mostly template
// catalog. Only catalog listings are cached; search queries and anything
// ownership- or session-related always hit storage.
type TemplateCache struct {
	cache           *gocache.Cache
	fetchCategories CategoriesFetcher
	fetchByCategory ByCategoryFetcher
	mu              sync.RWMutex
	ready           bool
}

// NewTemplateCache creates a new template cache with the given TTL
func NewTemplateCache(fetchCategories CategoriesFetcher, fetchByCategory ByCategoryFetcher, ttlSeconds int) *TemplateCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &TemplateCache{
		cache:           gocache.New(ttl, time.Hour),
		fetchCategories: fetchCategories,
		fetchByCategory: fetchByCategory,
	}
}

// Initialize performs initial cache population (synchronous, blocks until ready)
// Should be called during application startup before accepting requests
func (tc *TemplateCache) Initialize() error {
	logger.Info("Initializing template cache...")

	categories, err := tc.refreshCategories(context.Background())
	if err != nil {
		logger.Error("Failed to initialize template cache", zap.Error(err))
		return err
	}

	tc.mu.Lock()
	tc.ready = true
	tc.mu.Unlock()

	logger.Info("Template cache initialized successfully",
		zap.Int("categories", len(categories)))
	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (tc *TemplateCache) IsReady() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.ready
}

// GetCategories returns catalog categories, refreshing from storage on miss
func (tc *TemplateCache) GetCategories(ctx context.Context) ([]*models.TemplateCategory, error) {
	if cached, found := tc.cache.Get(categoriesKey); found {
		metrics.CacheHits.WithLabelValues(cacheName).Inc()
		return cached.([]*models.TemplateCategory), nil
	}
	metrics.CacheMisses.WithLabelValues(cacheName).Inc()
	return tc.refreshCategories(ctx)
}

// GetByCategory returns one category's templates, refreshing on miss
func (tc *TemplateCache) GetByCategory(ctx context.Context, category string) ([]*models.TaskTemplate, error) {
	key := categoryKeyPrefix + category
	if cached, found := tc.cache.Get(key); found {
		metrics.CacheHits.WithLabelValues(cacheName).Inc()
		return cached.([]*models.TaskTemplate), nil
	}
	metrics.CacheMisses.WithLabelValues(cacheName).Inc()

	templates, err := tc.fetchByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates for category %q: %w", category, err)
	}
	tc.cache.Set(key, templates, gocache.DefaultExpiration)
	return templates, nil
}

// Invalidate drops all cached entries. Called after bulk imports.
func (tc *TemplateCache) Invalidate() {
	tc.cache.Flush()
	logger.Info("Template cache invalidated")
}

func (tc *TemplateCache) refreshCategories(ctx context.Context) ([]*models.TemplateCategory, error) {
	categories, err := tc.fetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template categories: %w", err)
	}
	tc.cache.Set(categoriesKey, categories, gocache.DefaultExpiration)
	return categories, nil
}
