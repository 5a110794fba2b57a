package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
)

// dayLogDateFormat names the per-day entry log files,
// e.g. TimeEntryLog-2026-03-04.json.
const dayLogDateFormat = "2006-01-02"

// JSONEntryLogRepo appends time entries to one JSON file per calendar
// day, keyed by the entry's start time.
type JSONEntryLogRepo struct {
	dir string
	log *slog.Logger
}

// NewJSONEntryLogRepo creates an entry log repo rooted at dir.
func NewJSONEntryLogRepo(dir string, logger *slog.Logger) *JSONEntryLogRepo {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JSONEntryLogRepo{dir: dir, log: logger}
}

func (r *JSONEntryLogRepo) dayFilePath(day time.Time) string {
	return filepath.Join(r.dir, "TimeEntryLog-"+day.Format(dayLogDateFormat)+".json")
}

func (r *JSONEntryLogRepo) Append(entry domain.TimeEntry) error {
	day := entry.FromTime
	log, err := r.LoadDay(day)
	if err != nil {
		return err
	}
	log.Entries = append(log.Entries, entry)
	log.Updated = time.Now()
	return r.saveDay(day, log)
}

func (r *JSONEntryLogRepo) LoadDay(day time.Time) (domain.DayLog, error) {
	path := r.dayFilePath(day)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.DayLog{Date: day.Format(dayLogDateFormat), Entries: []domain.TimeEntry{}}, nil
	}
	if err != nil {
		return domain.DayLog{}, fmt.Errorf("reading entry log %s: %w", path, err)
	}

	var log domain.DayLog
	if err := json.Unmarshal(data, &log); err != nil {
		return domain.DayLog{}, fmt.Errorf("parsing entry log %s: %w", path, err)
	}
	return log, nil
}

func (r *JSONEntryLogRepo) LoadRange(from, to time.Time) ([]domain.TimeEntry, error) {
	var entries []domain.TimeEntry
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		log, err := r.LoadDay(d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, log.Entries...)
	}
	return entries, nil
}

func (r *JSONEntryLogRepo) saveDay(day time.Time, log domain.DayLog) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	path := r.dayFilePath(day)

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling entry log: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing entry log temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming entry log temp file: %w", err)
	}
	r.log.Debug("entry log saved", "path", path, "entries", len(log.Entries))
	return nil
}
