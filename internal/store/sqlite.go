package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
)

const sqliteSchema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS daily_prompt (
  slot INTEGER PRIMARY KEY CHECK (slot = 1),
  date TEXT NOT NULL,
  prompt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_answers (
  session_id TEXT NOT NULL,
  date TEXT NOT NULL,
  prompt TEXT NOT NULL,
  response TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT (datetime('now')),
  PRIMARY KEY (session_id, date)
);

CREATE INDEX IF NOT EXISTS idx_session_answers_session ON session_answers(session_id, date DESC);
`

// SQLiteStore is the embedded backend: a single database file, no server.
type SQLiteStore struct {
	db *sql.DB
}

// InitSQLite initializes the embedded backend at SQLITE_PATH
// (default ./data/dailyreflect.db).
func InitSQLite() (*SQLiteStore, error) {
	path := getEnvOrDefault("SQLITE_PATH", "./data/dailyreflect.db")
	return NewSQLiteStore(path)
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetDaily(ctx context.Context) (promptmodels.DailyPrompt, error) {
	var p promptmodels.DailyPrompt
	row := s.db.QueryRowContext(ctx, `SELECT date, prompt FROM daily_prompt WHERE slot = 1`)
	if err := row.Scan(&p.Date, &p.Prompt); err != nil {
		if err == sql.ErrNoRows {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("failed to read daily prompt: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) PutDaily(ctx context.Context, p promptmodels.DailyPrompt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_prompt(slot, date, prompt) VALUES(1, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET date=excluded.date, prompt=excluded.prompt
	`, p.Date, p.Prompt)
	if err != nil {
		return fmt.Errorf("failed to write daily prompt: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID, date string) (journalmodels.Entry, error) {
	entry := journalmodels.Entry{Date: date}
	row := s.db.QueryRowContext(ctx,
		`SELECT prompt, response FROM session_answers WHERE session_id = ? AND date = ?`,
		sessionID, date)
	if err := row.Scan(&entry.Prompt, &entry.Response); err != nil {
		if err == sql.ErrNoRows {
			return entry, ErrNotFound
		}
		return entry, fmt.Errorf("failed to read answer: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sessionID, date string, entry journalmodels.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_answers(session_id, date, prompt, response, updated_at)
		VALUES(?, ?, ?, ?, datetime('now'))
		ON CONFLICT(session_id, date) DO UPDATE SET
		  prompt=excluded.prompt,
		  response=excluded.response,
		  updated_at=excluded.updated_at
	`, sessionID, date, entry.Prompt, entry.Response)
	if err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]journalmodels.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, prompt, response FROM session_answers
		WHERE session_id = ?
		ORDER BY date DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	entries := []journalmodels.Entry{}
	for rows.Next() {
		var entry journalmodels.Entry
		if err := rows.Scan(&entry.Date, &entry.Prompt, &entry.Response); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
