package models

import "time"

// TaskTemplate is a catalog entry describing a reusable skill-development
// task. The catalog is sourced from bulk import and read-only to users.
type TaskTemplate struct {
	ID            int64     `json:"id"`
	Category      string    `json:"category"`
	SkillName     string    `json:"skill_name"`
	Level         *int      `json:"level"`
	Goal          *string   `json:"goal"`
	Description   *string   `json:"description"`
	Criteria      *string   `json:"criteria"`
	DurationWeeks *int      `json:"duration_weeks"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"-"`
}

// TemplateCategory is a catalog category with its template count
type TemplateCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TemplateSearchQuery holds the /templates/search filters
type TemplateSearchQuery struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	Level    *int   `form:"level"`
}
