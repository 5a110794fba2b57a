package repository

import (
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
)

// IssueRepo persists the two ordered issue lists. Lists are loaded at
// the start of any operation that needs them and written back right
// after the mutation that changed them; there is no long-lived cache.
type IssueRepo interface {
	// LoadActive returns the active list, creating an empty one on
	// disk if the file does not exist yet.
	LoadActive() (*domain.IssueList, error)
	// LoadDeleted returns the deleted list, creating an empty one on
	// disk if the file does not exist yet.
	LoadDeleted() (*domain.IssueList, error)
	// SaveActive writes the active list.
	SaveActive(list *domain.IssueList) error
	// SaveDeleted writes the deleted list, permanently dropping
	// issues created more than 30 days ago.
	SaveDeleted(list *domain.IssueList) error
}

// EntryLogRepo persists completed time entries into per-calendar-day
// JSON log files.
type EntryLogRepo interface {
	// Append adds an entry to the log file for the entry's date.
	Append(entry domain.TimeEntry) error
	// LoadDay returns the log for one calendar day; a missing file is
	// an empty log, not an error.
	LoadDay(day time.Time) (domain.DayLog, error)
	// LoadRange returns all entries for days in [from, to] inclusive.
	LoadRange(from, to time.Time) ([]domain.TimeEntry, error)
}
