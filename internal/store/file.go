package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
)

const (
	promptFileName = "daily_prompt.json"
	responsesDir   = "responses"
)

// FileStore keeps everything as JSON files under a data directory: the global
// prompt slot at daily_prompt.json and one responses/<session>/<date>.json
// file per answer.
type FileStore struct {
	dir string
}

// InitFile initializes the flat-file backend under DATA_DIR (default ./data).
func InitFile() (*FileStore, error) {
	dir := getEnvOrDefault("DATA_DIR", "./data")
	return NewFileStore(dir)
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, responsesDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) GetDaily(_ context.Context) (promptmodels.DailyPrompt, error) {
	var p promptmodels.DailyPrompt
	data, err := os.ReadFile(filepath.Join(s.dir, promptFileName))
	if os.IsNotExist(err) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("failed to read prompt file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse prompt file: %w", err)
	}
	return p, nil
}

func (s *FileStore) PutDaily(_ context.Context, p promptmodels.DailyPrompt) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, promptFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, sessionID, date string) (journalmodels.Entry, error) {
	var entry journalmodels.Entry
	path, err := s.entryPath(sessionID, date)
	if err != nil {
		return entry, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return entry, ErrNotFound
	}
	if err != nil {
		return entry, fmt.Errorf("failed to read entry: %w", err)
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, fmt.Errorf("failed to parse entry: %w", err)
	}
	entry.Date = date
	return entry, nil
}

func (s *FileStore) Put(_ context.Context, sessionID, date string, entry journalmodels.Entry) error {
	path, err := s.entryPath(sessionID, date)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	// The per-day file holds only {prompt, response}; the date lives in the
	// filename.
	entry.Date = ""
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context, sessionID string) ([]journalmodels.Entry, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, responsesDir, sessionID)
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []journalmodels.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	entries := make([]journalmodels.Entry, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(dir, names[i]))
		if err != nil {
			continue
		}
		var entry journalmodels.Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			// One corrupt record must not take down the listing.
			continue
		}
		if entry.Response == "" {
			continue
		}
		entry.Date = strings.TrimSuffix(names[i], ".json")
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) entryPath(sessionID, date string) (string, error) {
	if err := validateSessionID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, responsesDir, sessionID, date+".json"), nil
}

// validateSessionID rejects identifiers that could escape the session's
// directory. Session IDs are UUIDs in practice.
func validateSessionID(sessionID string) error {
	if sessionID == "" || strings.ContainsAny(sessionID, "/\\") || strings.Contains(sessionID, "..") {
		return fmt.Errorf("invalid session id %q", sessionID)
	}
	return nil
}
