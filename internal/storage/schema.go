package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go's New function.
func InitSchema(db *sql.DB) error {
	if err := createCoursesTable(db); err != nil {
		return err
	}

	if err := createPromptsTable(db); err != nil {
		return err
	}

	return createMessagesTable(db)
}

func createCoursesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT '',
		modality TEXT NOT NULL DEFAULT '',
		total_hours TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '',
		area TEXT NOT NULL DEFAULT '',
		prerequisite TEXT NOT NULL DEFAULT '',
		thesis_required TEXT NOT NULL DEFAULT '',
		internship_required TEXT NOT NULL DEFAULT '',
		price_bank_slip TEXT NOT NULL DEFAULT '',
		price_card TEXT NOT NULL DEFAULT '',
		price_pix TEXT NOT NULL DEFAULT '',
		syllabus_url TEXT NOT NULL DEFAULT '',
		registry_url TEXT NOT NULL DEFAULT '',
		campus TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_courses_area ON courses(area);
	CREATE INDEX IF NOT EXISTS idx_courses_type ON courses(type);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}

	return nil
}

func createPromptsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS agent_prompts (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create agent_prompts table: %w", err)
	}

	return nil
}

func createMessagesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_key, created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create chat_messages table: %w", err)
	}

	return nil
}
