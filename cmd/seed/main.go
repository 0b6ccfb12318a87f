// Command seed imports the course catalog and prompt modules from YAML
// files into the SQLite store. Imports are upserts, so re-running against
// updated files refreshes existing rows in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Killzin1000/quality-eco/internal/config"
	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/storage"
	"gopkg.in/yaml.v3"
)

type courseFile struct {
	Courses []courseEntry `yaml:"courses"`
}

type courseEntry struct {
	Name               string `yaml:"name"`
	Type               string `yaml:"type"`
	Modality           string `yaml:"modality"`
	TotalHours         string `yaml:"total_hours"`
	Duration           string `yaml:"duration"`
	Area               string `yaml:"area"`
	Prerequisite       string `yaml:"prerequisite"`
	ThesisRequired     string `yaml:"thesis_required"`
	InternshipRequired string `yaml:"internship_required"`
	PriceBankSlip      string `yaml:"price_bank_slip"`
	PriceCard          string `yaml:"price_card"`
	PricePix           string `yaml:"price_pix"`
	SyllabusURL        string `yaml:"syllabus_url"`
	RegistryURL        string `yaml:"registry_url"`
	Campus             string `yaml:"campus"`
	Notes              string `yaml:"notes"`
}

type promptFile struct {
	Prompts []promptEntry `yaml:"prompts"`
}

type promptEntry struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
	Active  *bool  `yaml:"active"`
}

func main() {
	coursesPath := flag.String("courses", "", "path to the courses YAML file")
	promptsPath := flag.String("prompts", "", "path to the prompts YAML file")
	flag.Parse()

	if *coursesPath == "" && *promptsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed [-courses courses.yaml] [-prompts prompts.yaml]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).WithModule("seed")

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	if *coursesPath != "" {
		n, err := seedCourses(ctx, db, *coursesPath)
		if err != nil {
			log.WithError(err).Fatal("Course import failed")
		}
		log.WithField("count", n).Info("Courses imported")
	}

	if *promptsPath != "" {
		n, err := seedPrompts(ctx, db, *promptsPath)
		if err != nil {
			log.WithError(err).Fatal("Prompt import failed")
		}
		log.WithField("count", n).Info("Prompts imported")
	}
}

func seedCourses(ctx context.Context, db *storage.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var file courseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	count := 0
	for _, entry := range file.Courses {
		if entry.Name == "" {
			return count, fmt.Errorf("course entry %d has no name", count+1)
		}
		course := storage.Course{
			Name:               entry.Name,
			Type:               entry.Type,
			Modality:           entry.Modality,
			TotalHours:         entry.TotalHours,
			Duration:           entry.Duration,
			Area:               entry.Area,
			Prerequisite:       entry.Prerequisite,
			ThesisRequired:     entry.ThesisRequired,
			InternshipRequired: entry.InternshipRequired,
			PriceBankSlip:      entry.PriceBankSlip,
			PriceCard:          entry.PriceCard,
			PricePix:           entry.PricePix,
			SyllabusURL:        entry.SyllabusURL,
			RegistryURL:        entry.RegistryURL,
			Campus:             entry.Campus,
			Notes:              entry.Notes,
		}
		if err := db.SaveCourse(ctx, &course); err != nil {
			return count, fmt.Errorf("save course %q: %w", entry.Name, err)
		}
		count++
	}
	return count, nil
}

func seedPrompts(ctx context.Context, db *storage.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	count := 0
	for _, entry := range file.Prompts {
		if entry.Name == "" {
			return count, fmt.Errorf("prompt entry %d has no name", count+1)
		}
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		p := storage.Prompt{
			Name:    entry.Name,
			Content: entry.Content,
			Active:  active,
		}
		if err := db.SavePrompt(ctx, &p); err != nil {
			return count, fmt.Errorf("save prompt %q: %w", entry.Name, err)
		}
		count++
	}
	return count, nil
}
