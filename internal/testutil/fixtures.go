// Package testutil provides shared fixtures for repository, backend,
// and CLI tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrill/punchclock/internal/config"
	"github.com/jmerrill/punchclock/internal/domain"
)

var issueCounter atomic.Int64

// NewTestIssue returns an issue with a unique PROJ-n number.
func NewTestIssue(description string) domain.Issue {
	n := issueCounter.Add(1)
	return domain.NewIssue(fmt.Sprintf("PROJ-%d", n), description)
}

// EntryOption tweaks a fixture entry.
type EntryOption func(*domain.TimeEntry)

func WithComment(comment string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Comment = comment
	}
}

func WithSpan(from, to time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.FromTime = from
		e.ToTime = to
	}
}

// NewTestEntry returns a one-hour entry against the issue, starting at
// 09:00 on an arbitrary fixed workday.
func NewTestEntry(issue domain.Issue, opts ...EntryOption) domain.TimeEntry {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := domain.TimeEntry{
		ID:       uuid.New().String(),
		Issue:    issue,
		FromTime: from,
		ToTime:   from.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WeekdaySettings returns default settings whose active days include
// every weekday, so tests are not sensitive to the day they run on.
func WeekdaySettings() config.Settings {
	s := config.Default()
	s.DaysOfWeek = []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
	return s
}
