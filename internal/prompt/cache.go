package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"io.winapps.dailyreflect/internal/llm"
	promptmodels "io.winapps.dailyreflect/internal/models/prompt"
	"io.winapps.dailyreflect/internal/store"
)

const dateLayout = "2006-01-02"

// Cache produces exactly one prompt per calendar date. The stored record is a
// single global slot; when its date is stale the generator is invoked once and
// the slot overwritten. The mutex serializes the read-generate-write sequence
// so concurrent requests on a date boundary cannot trigger duplicate
// generator calls or lose the update.
type Cache struct {
	store store.PromptStore
	gen   llm.PromptGenerator

	mu  sync.Mutex
	now func() time.Time
}

// NewCache creates a prompt cache over the given slot store and generator.
func NewCache(s store.PromptStore, gen llm.PromptGenerator) *Cache {
	return &Cache{
		store: s,
		gen:   gen,
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests use it to drive date rollover.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TodayKey returns the current ISO calendar date, the partition key for both
// the prompt slot and session answers.
func (c *Cache) TodayKey() string {
	return c.now().Format(dateLayout)
}

// Today returns the prompt for the current date, generating and persisting it
// first if the slot is missing or stale. Generator failures propagate; nothing
// is written until generation succeeds.
func (c *Cache) Today(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.TodayKey()

	cached, err := c.store.GetDaily(ctx)
	if err == nil && cached.Date == today {
		return cached.Prompt, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to read prompt slot: %w", err)
	}

	text, err := c.gen.GeneratePrompt(ctx, llm.Instruction)
	if err != nil {
		return "", fmt.Errorf("failed to generate prompt: %w", err)
	}

	record := promptmodels.DailyPrompt{Date: today, Prompt: text}
	if err := c.store.PutDaily(ctx, record); err != nil {
		return "", fmt.Errorf("failed to persist prompt: %w", err)
	}
	return text, nil
}
