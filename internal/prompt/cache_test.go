package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.dailyreflect/internal/store"
)

type stubGenerator struct {
	calls int
	err   error
}

func (g *stubGenerator) GeneratePrompt(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("Question %d", g.calls), nil
}

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

func newTestCache(t *testing.T, gen *stubGenerator) (*Cache, *store.FileStore) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	c := NewCache(fs, gen)
	c.SetClock(fixedClock("2024-01-01"))
	return c, fs
}

func TestCache_GeneratesOnceForSameDate(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestCache(t, gen)
	ctx := context.Background()

	first, err := c.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Question 1", first)

	// Repeated reads on the same date hit the slot, not the generator
	second, err := c.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestCache_DailyRollover(t *testing.T) {
	gen := &stubGenerator{}
	c, fs := newTestCache(t, gen)
	ctx := context.Background()

	_, err := c.Today(ctx)
	require.NoError(t, err)

	c.SetClock(fixedClock("2024-01-02"))

	text, err := c.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Question 2", text)
	assert.Equal(t, 2, gen.calls)

	slot, err := fs.GetDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", slot.Date)
	assert.Equal(t, "Question 2", slot.Prompt)

	// And the new slot is stable for the rest of the day
	_, err = c.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestCache_GeneratorFailurePropagates(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	c, fs := newTestCache(t, gen)
	ctx := context.Background()

	_, err := c.Today(ctx)
	require.Error(t, err)

	// Nothing was written: the slot stays absent
	_, err = fs.GetDaily(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCache_CorruptSlotPropagates(t *testing.T) {
	gen := &stubGenerator{}
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daily_prompt.json"), []byte("{not json"), 0o644))

	c := NewCache(fs, gen)
	c.SetClock(fixedClock("2024-01-01"))

	_, err = c.Today(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, gen.calls)
}

func TestCache_TodayKey(t *testing.T) {
	c, _ := newTestCache(t, &stubGenerator{})
	assert.Equal(t, "2024-01-01", c.TodayKey())
}
