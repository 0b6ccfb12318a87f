package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// LoadActivePrompts returns all active prompt modules keyed by name.
// Entries with an empty name or content are skipped.
func (db *DB) LoadActivePrompts(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT name, content FROM agent_prompts WHERE active = 1")
	if err != nil {
		slog.ErrorContext(ctx, "failed to load prompts", "error", err)
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prompts := make(map[string]string)
	for rows.Next() {
		var name, content string
		if err := rows.Scan(&name, &content); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		if name != "" && content != "" {
			prompts[name] = content
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return prompts, nil
}

// SavePrompt inserts or updates a prompt module
func (db *DB) SavePrompt(ctx context.Context, prompt *Prompt) error {
	active := 0
	if prompt.Active {
		active = 1
	}
	query := `
		INSERT INTO agent_prompts (name, content, active)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			active = excluded.active
	`
	_, err := db.conn.ExecContext(ctx, query, prompt.Name, prompt.Content, active)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save prompt",
			"prompt_name", prompt.Name,
			"error", err)
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}

// CountPrompts returns the total number of active prompt modules
func (db *DB) CountPrompts(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM agent_prompts WHERE active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count prompts: %w", err)
	}
	return count, nil
}
