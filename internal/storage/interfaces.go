// Package storage provides repository interfaces for data access abstraction.
// These interfaces enable dependency inversion and facilitate testing by
// decoupling the dialogue core from concrete storage implementations.
package storage

import (
	"context"
)

// CourseRepository defines the interface for course catalog operations.
type CourseRepository interface {
	// SearchCourses returns courses whose name matches every keyword
	// (case-insensitive substring), optionally narrowed by type and area.
	// Result order is undefined; callers truncate and de-duplicate.
	SearchCourses(ctx context.Context, keywords []string, courseType, area string) ([]Course, error)

	// GetCourseByName retrieves a course by its exact name.
	// When full is false only the id and name columns are populated.
	// Returns nil (no error) when the course does not exist.
	GetCourseByName(ctx context.Context, name string, full bool) (*Course, error)

	SaveCourse(ctx context.Context, course *Course) error
	CountCourses(ctx context.Context) (int, error)
}

// PromptRepository defines the interface for prompt module operations.
type PromptRepository interface {
	// LoadActivePrompts returns all active prompt modules keyed by name.
	LoadActivePrompts(ctx context.Context) (map[string]string, error)

	SavePrompt(ctx context.Context, prompt *Prompt) error
	CountPrompts(ctx context.Context) (int, error)
}

// MessageSink defines the interface for the fire-and-forget message log.
type MessageSink interface {
	// AppendMessage persists one conversation message.
	// Failures are expected to be logged by the caller, never propagated
	// into the turn result.
	AppendMessage(ctx context.Context, sessionKey, role, content string) error
}
