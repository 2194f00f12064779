package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idp-tracker/idp-api/internal/repository"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"aqa prefix artifact", "AQA._Технические_навыки", "AQA. Технические навыки"},
		{"underscores become spaces", "Виды_тестирования", "Виды тестирования"},
		{"whitespace collapsed", "  machine   learning  ", "machine learning"},
		{"alias folded", "Алгоритм работы с фичами", "Алгоритмы работы с фичами"},
		{"aqa alias folded", "AQA._Алгоритм_работы_с_фичами", "Алгоритмы работы с фичами"},
		{"casing preserved", "AQA. Инструменты и технологии", "AQA. Инструменты и технологии"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCategory(tt.raw))
		})
	}
}

func TestReadJSON_CamelCaseFields(t *testing.T) {
	payload := `[{
		"category": "Backend",
		"skillName": "Go",
		"level": 2,
		"goal": "Write services",
		"description": "Build a REST API",
		"criteria": "Service in production",
		"durationWeeks": 4
	}]`

	records, err := readJSON(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Backend", rec.Category)
	assert.Equal(t, "Go", rec.SkillName)
	require.NotNil(t, rec.Level)
	assert.Equal(t, 2, *rec.Level)
	require.NotNil(t, rec.DurationWeeks)
	assert.Equal(t, 4, *rec.DurationWeeks)
}

func TestReadJSON_SnakeCaseFields(t *testing.T) {
	payload := `[{"category": "Backend", "skill_name": "Go", "duration_weeks": 6}]`

	records, err := readJSON(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Go", records[0].SkillName)
	require.NotNil(t, records[0].DurationWeeks)
	assert.Equal(t, 6, *records[0].DurationWeeks)
}

func TestBuildTemplates_NormalizesAndDedups(t *testing.T) {
	level := 1
	records := []importRecord{
		{Category: "AQA._Технические_навыки", SkillName: "SQL", Level: &level},
		{Category: "AQA. Технические навыки", SkillName: "SQL", Level: &level},
		{Category: "Backend", SkillName: ""},
	}

	existing := map[string]struct{}{
		repository.TemplateKey("Виды тестирования", "Регресс", -1): {},
	}

	templates, skipped := buildTemplates(records, "kb_tasks", existing)

	require.Len(t, templates, 1)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "AQA. Технические навыки", templates[0].Category)
	assert.Equal(t, "SQL", templates[0].SkillName)
	assert.Equal(t, "kb_tasks", templates[0].Source)
}
