package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idp-tracker/idp-api/internal/models"
	apperrors "github.com/idp-tracker/idp-api/pkg/errors"
)

const templateColumns = "id, category, skill_name, level, goal, description, criteria, duration_weeks, source, created_at"

// TemplateRepository handles the read-mostly task template catalog
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

func scanTemplate(row pgx.Row) (*models.TaskTemplate, error) {
	var t models.TaskTemplate
	err := row.Scan(&t.ID, &t.Category, &t.SkillName, &t.Level, &t.Goal,
		&t.Description, &t.Criteria, &t.DurationWeeks, &t.Source, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundError("template")
		}
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}
	return &t, nil
}

func collectTemplates(rows pgx.Rows) ([]*models.TaskTemplate, error) {
	defer rows.Close()

	templates := []*models.TaskTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// FetchCategoriesFromDB returns catalog categories with template counts.
// Named to make clear this bypasses the cache; the cache layer wraps it.
func (r *TemplateRepository) FetchCategoriesFromDB(ctx context.Context) ([]*models.TemplateCategory, error) {
	query := `
		SELECT category, COUNT(*) AS count
		FROM task_templates
		GROUP BY category
		ORDER BY category
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.TemplateCategory{}
	for rows.Next() {
		var c models.TemplateCategory
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// FetchByCategoryFromDB returns a category's templates ordered by skill and level
func (r *TemplateRepository) FetchByCategoryFromDB(ctx context.Context, category string) ([]*models.TaskTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task_templates
		WHERE category = $1
		ORDER BY skill_name, level`, templateColumns)

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates by category: %w", err)
	}
	return collectTemplates(rows)
}

// Search filters templates by free text (skill name, goal, description),
// category and level. Empty filters are skipped.
func (r *TemplateRepository) Search(ctx context.Context, q models.TemplateSearchQuery) ([]*models.TaskTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM task_templates WHERE 1=1", templateColumns)
	args := []any{}

	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (skill_name ILIKE $%d OR goal ILIKE $%d OR description ILIKE $%d)", n, n, n)
	}
	if q.Category != "" {
		args = append(args, q.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if q.Level != nil {
		args = append(args, *q.Level)
		query += fmt.Sprintf(" AND level = $%d", len(args))
	}

	query += " ORDER BY category, skill_name"

	start := time.Now()
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		recordDBOperation("template_search", start, err)
		return nil, fmt.Errorf("failed to search templates: %w", err)
	}
	templates, err := collectTemplates(rows)
	recordDBOperation("template_search", start, err)
	return templates, err
}

// GetByID loads a template by primary key
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*models.TaskTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM task_templates WHERE id = $1", templateColumns)
	return scanTemplate(r.pool.QueryRow(ctx, query, id))
}

// BulkInsert loads templates via the PostgreSQL COPY protocol. Used by the
// offline importer only.
func (r *TemplateRepository) BulkInsert(ctx context.Context, templates []*models.TaskTemplate) (int64, error) {
	rows := make([][]any, len(templates))
	for i, t := range templates {
		rows[i] = []any{t.Category, t.SkillName, t.Level, t.Goal, t.Description, t.Criteria, t.DurationWeeks, t.Source}
	}

	copied, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"task_templates"},
		[]string{"category", "skill_name", "level", "goal", "description", "criteria", "duration_weeks", "source"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk insert templates: %w", err)
	}
	return copied, nil
}

// ExistingKeys returns the (category, skill_name, level) keys already
// imported from a source, for importer-side deduplication.
func (r *TemplateRepository) ExistingKeys(ctx context.Context, source string) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT category, skill_name, COALESCE(level, -1) FROM task_templates WHERE source = $1", source)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing template keys: %w", err)
	}
	defer rows.Close()

	keys := map[string]struct{}{}
	for rows.Next() {
		var category, skill string
		var level int
		if err := rows.Scan(&category, &skill, &level); err != nil {
			return nil, fmt.Errorf("failed to scan template key: %w", err)
		}
		keys[TemplateKey(category, skill, level)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template keys: %w", err)
	}
	return keys, nil
}

// TemplateKey builds the dedup key used by ExistingKeys and the importer
func TemplateKey(category, skillName string, level int) string {
	return fmt.Sprintf("%s|%s|%d", category, skillName, level)
}
