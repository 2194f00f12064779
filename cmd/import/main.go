package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/models"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/pkg/db"
	"github.com/idp-tracker/idp-api/pkg/logger"
)

// importRecord is the flat on-disk shape of one catalog entry. JSON files
// hold an array of these; CSV files hold one per row with a header.
type importRecord struct {
	Category      string
	SkillName     string
	Level         *int
	Goal          string
	Description   string
	Criteria      string
	DurationWeeks *int
}

// UnmarshalJSON accepts both the kb_tasks camelCase field names
// (skillName, durationWeeks) and their snake_case equivalents.
func (r *importRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category           string `json:"category"`
		SkillName          string `json:"skillName"`
		SkillNameSnake     string `json:"skill_name"`
		Level              *int   `json:"level"`
		Goal               string `json:"goal"`
		Description        string `json:"description"`
		Criteria           string `json:"criteria"`
		DurationWeeks      *int   `json:"durationWeeks"`
		DurationWeeksSnake *int   `json:"duration_weeks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Category = raw.Category
	r.Level = raw.Level
	r.Goal = raw.Goal
	r.Description = raw.Description
	r.Criteria = raw.Criteria

	r.SkillName = raw.SkillName
	if r.SkillName == "" {
		r.SkillName = raw.SkillNameSnake
	}
	r.DurationWeeks = raw.DurationWeeks
	if r.DurationWeeks == nil {
		r.DurationWeeks = raw.DurationWeeksSnake
	}
	return nil
}

func main() {
	var (
		filePath = flag.String("file", "", "path to a .json or .csv template catalog file")
		source   = flag.String("source", "", "source label stored with the templates (defaults to the file name)")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file catalog.json [-source label]")
		os.Exit(2)
	}
	if *source == "" {
		*source = filepath.Base(*filePath)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		ServiceName: "idp-import",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	records, err := readRecords(*filePath)
	if err != nil {
		logger.Fatal("Failed to read catalog file", zap.Error(err), zap.String("file", *filePath))
	}
	logger.Info("Catalog file read", zap.String("file", *filePath), zap.Int("records", len(records)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	templateRepo := repository.NewTemplateRepository(pool)

	existing, err := templateRepo.ExistingKeys(ctx, *source)
	if err != nil {
		logger.Fatal("Failed to load existing templates", zap.Error(err))
	}

	templates, skipped := buildTemplates(records, *source, existing)
	if len(templates) == 0 {
		logger.Info("Nothing to import", zap.Int("skipped", skipped))
		return
	}

	inserted, err := templateRepo.BulkInsert(ctx, templates)
	if err != nil {
		logger.Fatal("Failed to import templates", zap.Error(err))
	}

	logger.Info("Import finished",
		zap.Int64("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.String("source", *source))
}

// buildTemplates normalizes records and drops duplicates, both against the
// database and within the file itself
func buildTemplates(records []importRecord, source string, existing map[string]struct{}) ([]*models.TaskTemplate, int) {
	templates := make([]*models.TaskTemplate, 0, len(records))
	skipped := 0

	for _, rec := range records {
		category := normalizeCategory(rec.Category)
		skillName := strings.TrimSpace(rec.SkillName)
		if category == "" || skillName == "" {
			skipped++
			continue
		}

		level := -1
		if rec.Level != nil {
			level = *rec.Level
		}
		key := repository.TemplateKey(category, skillName, level)
		if _, ok := existing[key]; ok {
			skipped++
			continue
		}
		existing[key] = struct{}{}

		t := &models.TaskTemplate{
			Category:      category,
			SkillName:     skillName,
			Level:         rec.Level,
			DurationWeeks: rec.DurationWeeks,
			Source:        source,
		}
		if goal := strings.TrimSpace(rec.Goal); goal != "" {
			t.Goal = &goal
		}
		if desc := strings.TrimSpace(rec.Description); desc != "" {
			t.Description = &desc
		}
		if criteria := strings.TrimSpace(rec.Criteria); criteria != "" {
			t.Criteria = &criteria
		}
		templates = append(templates, t)
	}

	return templates, skipped
}

// categoryAliases folds near-duplicate catalog categories into one
// canonical name after normalization
var categoryAliases = map[string]string{
	"AQA. Алгоритм работы с фичами": "Алгоритмы работы с фичами",
	"Алгоритм работы с фичами":      "Алгоритмы работы с фичами",
}

// normalizeCategory cleans up raw catalog category names: the "AQA._"
// prefix artifact becomes "AQA. ", underscores become spaces, whitespace
// is collapsed, and known aliases are folded together. Casing is
// preserved as-is.
func normalizeCategory(raw string) string {
	category := strings.ReplaceAll(raw, "AQA._", "AQA. ")
	category = strings.ReplaceAll(category, "_", " ")
	category = strings.Join(strings.Fields(category), " ")
	if canonical, ok := categoryAliases[category]; ok {
		return canonical
	}
	return category
}

func readRecords(path string) ([]importRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSON(f)
	case ".csv":
		return readCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file format %q (want .json or .csv)", filepath.Ext(path))
	}
}

func readJSON(r io.Reader) ([]importRecord, error) {
	var records []importRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON catalog: %w", err)
	}
	return records, nil
}

// readCSV expects a header row naming the columns; unknown columns are ignored
func readCSV(r io.Reader) ([]importRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"category", "skill_name"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing required column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []importRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := importRecord{
			Category:    cell(row, "category"),
			SkillName:   cell(row, "skill_name"),
			Goal:        cell(row, "goal"),
			Description: cell(row, "description"),
			Criteria:    cell(row, "criteria"),
		}
		if raw := cell(row, "level"); raw != "" {
			level, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid level %q: %w", raw, err)
			}
			rec.Level = &level
		}
		if raw := cell(row, "duration_weeks"); raw != "" {
			weeks, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid duration_weeks %q: %w", raw, err)
			}
			rec.DurationWeeks = &weeks
		}
		records = append(records, rec)
	}

	return records, nil
}
