package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const courseColumns = `id, name, type, modality, total_hours, duration, area, prerequisite,
	thesis_required, internship_required, price_bank_slip, price_card, price_pix,
	syllabus_url, registry_url, campus, notes`

func scanCourse(scanner interface{ Scan(dest ...any) error }) (*Course, error) {
	var c Course
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Type, &c.Modality, &c.TotalHours, &c.Duration, &c.Area,
		&c.Prerequisite, &c.ThesisRequired, &c.InternshipRequired,
		&c.PriceBankSlip, &c.PriceCard, &c.PricePix,
		&c.SyllabusURL, &c.RegistryURL, &c.Campus, &c.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchCourses returns courses whose name contains every keyword,
// optionally narrowed by type (substring match) and area (exact match).
// All text matching is case-insensitive.
func (db *DB) SearchCourses(ctx context.Context, keywords []string, courseType, area string) ([]Course, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(courseColumns)
	sb.WriteString(" FROM courses WHERE 1=1")

	args := make([]any, 0, len(keywords)+2)
	for _, kw := range keywords {
		sb.WriteString(" AND LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	if courseType != "" {
		sb.WriteString(" AND LOWER(type) LIKE ?")
		args = append(args, "%"+strings.ToLower(courseType)+"%")
	}
	if area != "" {
		sb.WriteString(" AND area = ?")
		args = append(args, area)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to search courses",
			"keywords", keywords,
			"type", courseType,
			"area", area,
			"error", err)
		return nil, fmt.Errorf("search courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var courses []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SearchCourses",
			"duration_ms", duration.Milliseconds(),
			"keywords", keywords)
	}

	return courses, nil
}

// GetCourseByName retrieves a course by its exact name.
// When full is false only the id and name columns are loaded, matching the
// lightweight lookup used for navigation targets.
// Returns (nil, nil) when no course has that name.
func (db *DB) GetCourseByName(ctx context.Context, name string, full bool) (*Course, error) {
	if full {
		query := "SELECT " + courseColumns + " FROM courses WHERE name = ? LIMIT 1"
		c, err := scanCourse(db.conn.QueryRowContext(ctx, query, name))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to query course",
				"course_name", name,
				"error", err)
			return nil, fmt.Errorf("query course: %w", err)
		}
		return c, nil
	}

	var c Course
	err := db.conn.QueryRowContext(ctx, "SELECT id, name FROM courses WHERE name = ? LIMIT 1", name).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query course id",
			"course_name", name,
			"error", err)
		return nil, fmt.Errorf("query course id: %w", err)
	}
	return &c, nil
}

// SaveCourse inserts or updates a course record
func (db *DB) SaveCourse(ctx context.Context, course *Course) error {
	query := `
		INSERT INTO courses (
			name, type, modality, total_hours, duration, area, prerequisite,
			thesis_required, internship_required, price_bank_slip, price_card, price_pix,
			syllabus_url, registry_url, campus, notes
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type = excluded.type,
			modality = excluded.modality,
			total_hours = excluded.total_hours,
			duration = excluded.duration,
			area = excluded.area,
			prerequisite = excluded.prerequisite,
			thesis_required = excluded.thesis_required,
			internship_required = excluded.internship_required,
			price_bank_slip = excluded.price_bank_slip,
			price_card = excluded.price_card,
			price_pix = excluded.price_pix,
			syllabus_url = excluded.syllabus_url,
			registry_url = excluded.registry_url,
			campus = excluded.campus,
			notes = excluded.notes
	`
	_, err := db.conn.ExecContext(ctx, query,
		course.Name, course.Type, course.Modality, course.TotalHours, course.Duration,
		course.Area, course.Prerequisite, course.ThesisRequired, course.InternshipRequired,
		course.PriceBankSlip, course.PriceCard, course.PricePix,
		course.SyllabusURL, course.RegistryURL, course.Campus, course.Notes,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save course",
			"course_name", course.Name,
			"error", err)
		return fmt.Errorf("failed to save course: %w", err)
	}
	return nil
}

// CountCourses returns the total number of courses in the catalog
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}
