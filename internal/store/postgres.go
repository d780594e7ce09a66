package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
)

// PostgresStore is the server-backed SQL backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// InitPostgres initializes the PostgreSQL backend from DATABASE_URL or the
// individual POSTGRES_* variables.
func InitPostgres() (*PostgresStore, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Default local development configuration
		host := getEnvOrDefault("POSTGRES_HOST", "localhost")
		port := getEnvOrDefault("POSTGRES_PORT", "5432")
		user := getEnvOrDefault("POSTGRES_USER", "dailyreflect")
		password := os.Getenv("POSTGRES_PASSWORD")
		dbname := getEnvOrDefault("POSTGRES_DB", "dailyreflect")
		sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// createTables creates all required tables if they don't exist
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// Daily prompt - the single global slot, constrained to one row
	dailyPromptTable := `
		CREATE TABLE IF NOT EXISTS daily_prompt (
			slot SMALLINT PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
			date VARCHAR(10) NOT NULL,
			prompt TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Session answers - one row per (session, date)
	sessionAnswersTable := `
		CREATE TABLE IF NOT EXISTS session_answers (
			session_id VARCHAR(255) NOT NULL,
			date VARCHAR(10) NOT NULL,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (session_id, date)
		);
	`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_session_answers_session ON session_answers(session_id, date DESC);`,
	}

	tables := []string{dailyPromptTable, sessionAnswersTable}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) GetDaily(ctx context.Context) (promptmodels.DailyPrompt, error) {
	var p promptmodels.DailyPrompt
	row := s.pool.QueryRow(ctx, `SELECT date, prompt FROM daily_prompt WHERE slot = 1`)
	if err := row.Scan(&p.Date, &p.Prompt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("failed to read daily prompt: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) PutDaily(ctx context.Context, p promptmodels.DailyPrompt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_prompt (slot, date, prompt, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (slot) DO UPDATE SET
			date = EXCLUDED.date,
			prompt = EXCLUDED.prompt,
			updated_at = EXCLUDED.updated_at
	`, p.Date, p.Prompt)
	if err != nil {
		return fmt.Errorf("failed to write daily prompt: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID, date string) (journalmodels.Entry, error) {
	entry := journalmodels.Entry{Date: date}
	row := s.pool.QueryRow(ctx,
		`SELECT prompt, response FROM session_answers WHERE session_id = $1 AND date = $2`,
		sessionID, date)
	if err := row.Scan(&entry.Prompt, &entry.Response); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, ErrNotFound
		}
		return entry, fmt.Errorf("failed to read answer: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, sessionID, date string, entry journalmodels.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_answers (session_id, date, prompt, response, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (session_id, date) DO UPDATE SET
			prompt = EXCLUDED.prompt,
			response = EXCLUDED.response,
			updated_at = EXCLUDED.updated_at
	`, sessionID, date, entry.Prompt, entry.Response)
	if err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]journalmodels.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, prompt, response FROM session_answers
		WHERE session_id = $1
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

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
