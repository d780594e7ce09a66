package models

// DailyPrompt is the single global prompt slot: one question per calendar
// date, shared by every session. Date is the ISO calendar date (YYYY-MM-DD)
// that acts as the cache key.
type DailyPrompt struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
}
