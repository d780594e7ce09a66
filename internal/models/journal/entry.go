package models

// Entry is one session's answer for one calendar date. Prompt is a copy of
// the daily prompt at the time the answer was saved, so history keeps the
// original question even after the global slot rolls over.
type Entry struct {
	Date     string `json:"date,omitempty"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}
