package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AppendMessage persists one conversation message to the chat log.
// The caller is expected to treat failures as log-only; the message log
// never blocks a turn.
func (db *DB) AppendMessage(ctx context.Context, sessionKey, role, content string) error {
	query := `
		INSERT INTO chat_messages (session_key, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, sessionKey, role, content, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to append chat message",
			"session_key", sessionKey,
			"role", role,
			"error", err)
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// GetMessages returns the persisted messages for a session in insertion order.
func (db *DB) GetMessages(ctx context.Context, sessionKey string) ([]ChatMessage, error) {
	query := `
		SELECT id, session_key, role, content, created_at
		FROM chat_messages
		WHERE session_key = ?
		ORDER BY id ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, sessionKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query chat messages",
			"session_key", sessionKey,
			"error", err)
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionKey, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return messages, nil
}
