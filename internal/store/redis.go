package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
)

const redisPromptKey = "daily_prompt"

// RedisStore keeps the prompt slot in a plain key and each session's answers
// in a hash keyed by date.
type RedisStore struct {
	client *redis.Client
}

// InitRedis initializes the Redis backend from the REDIS_* environment variables.
func InitRedis() (*RedisStore, error) {
	host := getEnvOrDefault("REDIS_HOST", "localhost")
	port := getEnvOrDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD") // No default for password
	dbStr := getEnvOrDefault("REDIS_DB", "0")

	db, err := strconv.Atoi(dbStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) GetDaily(ctx context.Context) (promptmodels.DailyPrompt, error) {
	var p promptmodels.DailyPrompt
	data, err := s.client.Get(ctx, redisPromptKey).Result()
	if errors.Is(err, redis.Nil) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("failed to read daily prompt: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, fmt.Errorf("failed to parse daily prompt: %w", err)
	}
	return p, nil
}

func (s *RedisStore) PutDaily(ctx context.Context, p promptmodels.DailyPrompt) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal daily prompt: %w", err)
	}
	if err := s.client.Set(ctx, redisPromptKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write daily prompt: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID, date string) (journalmodels.Entry, error) {
	entry := journalmodels.Entry{Date: date}
	data, err := s.client.HGet(ctx, sessionKey(sessionID), date).Result()
	if errors.Is(err, redis.Nil) {
		return entry, ErrNotFound
	}
	if err != nil {
		return entry, fmt.Errorf("failed to read answer: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return entry, fmt.Errorf("failed to parse answer: %w", err)
	}
	entry.Date = date
	return entry, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID, date string, entry journalmodels.Entry) error {
	entry.Date = ""
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	if err := s.client.HSet(ctx, sessionKey(sessionID), date, data).Err(); err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, sessionID string) ([]journalmodels.Entry, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	dates := make([]string, 0, len(fields))
	for date := range fields {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	entries := make([]journalmodels.Entry, 0, len(dates))
	for _, date := range dates {
		var entry journalmodels.Entry
		if err := json.Unmarshal([]byte(fields[date]), &entry); err != nil {
			continue
		}
		if entry.Response == "" {
			continue
		}
		entry.Date = date
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func sessionKey(sessionID string) string {
	return fmt.Sprintf("responses:%s", sessionID)
}
