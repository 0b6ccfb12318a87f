// Package config provides centralized timeout constants for the application.
//
// These values bound each blocking round trip so a stuck generator or store
// cannot hold a turn open indefinitely.
package config

import "time"

// Turn processing timeouts
const (
	// TurnProcessing is the timeout for handling a single chat turn end to end.
	// Covers interceptor lookups, profile update, prompt assembly, generation,
	// and output classification.
	TurnProcessing = 60 * time.Second

	// GeneratorRequest is the timeout for a single LLM generation call.
	// Generation of a full conversational reply can take noticeably longer
	// than classification-style calls.
	GeneratorRequest = 30 * time.Second

	// StoreQuery is the timeout for a single database query
	// (course lookup, prompt load, message append).
	StoreQuery = 5 * time.Second
)

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout; chat payloads are small JSON bodies.
	HTTPRead = 10 * time.Second

	// HTTPWrite accommodates TurnProcessing plus response serialization.
	HTTPWrite = 65 * time.Second

	// HTTPIdle is the idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight turns to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
