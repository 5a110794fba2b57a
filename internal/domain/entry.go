package domain

import "time"

// TimeEntry records work done against one issue for one interval.
// Entries are created by the prompt on submission and are immutable
// afterwards; backends only read them.
type TimeEntry struct {
	ID       string    `json:"id"`
	Issue    Issue     `json:"issue"`
	FromTime time.Time `json:"from_time"`
	ToTime   time.Time `json:"to_time"`
	Comment  string    `json:"comment,omitempty"`
}

// Duration is the length of the recorded interval.
func (e TimeEntry) Duration() time.Duration {
	return e.ToTime.Sub(e.FromTime)
}

// DayLog is the on-disk shape of one calendar day's entry log file.
type DayLog struct {
	Date    string      `json:"date"`
	Entries []TimeEntry `json:"entries"`
	Updated time.Time   `json:"updated"`
}
