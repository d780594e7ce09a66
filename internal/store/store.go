package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// treat it as "no value yet", not as a failure.
var ErrNotFound = errors.New("store: record not found")

// PromptStore holds the single global daily-prompt slot. There is exactly one
// logical record; PutDaily overwrites it wholesale on date rollover.
type PromptStore interface {
	GetDaily(ctx context.Context) (promptmodels.DailyPrompt, error)
	PutDaily(ctx context.Context, p promptmodels.DailyPrompt) error
}

// ResponseStore persists one answer per (session, date). Put overwrites any
// existing record for the same pair; last write wins.
type ResponseStore interface {
	Get(ctx context.Context, sessionID, date string) (journalmodels.Entry, error)
	Put(ctx context.Context, sessionID, date string, entry journalmodels.Entry) error
	// List returns the session's entries most recent first. A single
	// unreadable record is skipped, never failing the whole listing.
	List(ctx context.Context, sessionID string) ([]journalmodels.Entry, error)
}

// Store is the full persistence surface behind the journal.
type Store interface {
	PromptStore
	ResponseStore
	Close() error
}

// Open selects a backend from the STORE_DRIVER environment variable and
// initializes it. The default is the flat-file backend.
func Open() (Store, error) {
	driver := getEnvOrDefault("STORE_DRIVER", "file")
	switch driver {
	case "file":
		return InitFile()
	case "sqlite":
		return InitSQLite()
	case "postgres":
		return InitPostgres()
	case "redis":
		return InitRedis()
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
