package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SettingsFileName is the settings file inside the data directory.
const SettingsFileName = "settings.json"

// Settings is the single persisted configuration record. It is loaded
// once at startup and passed explicitly to everything that needs it;
// the settings editor is the only writer.
type Settings struct {
	Theme           string `json:"theme"`
	BaseURL         string `json:"base_url"`
	StartHour       int    `json:"start_hour"`
	StartMinute     int    `json:"start_minute"`
	EndHour         int    `json:"end_hour"`
	EndMinute       int    `json:"end_minute"`
	IntervalHours   int    `json:"interval_hours"`
	IntervalMinutes int    `json:"interval_minutes"`
	EnableJira      bool   `json:"enable_jira"`
	LogLevel        string `json:"log_level"`
	// DaysOfWeek holds time.Weekday values (Sunday = 0) on which
	// prompts fire.
	DaysOfWeek []time.Weekday `json:"days_of_week"`
}

// Default returns the settings written on first run: a 08:00–17:00
// weekday schedule prompting every hour, Jira disabled.
func Default() Settings {
	return Settings{
		Theme:         "dark",
		StartHour:     8,
		EndHour:       17,
		IntervalHours: 1,
		LogLevel:      "info",
		DaysOfWeek: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

// Interval is the configured recurring duration between prompts.
// A zero or negative configuration falls back to one hour so the
// scheduler can never spin.
func (s Settings) Interval() time.Duration {
	d := time.Duration(s.IntervalHours)*time.Hour + time.Duration(s.IntervalMinutes)*time.Minute
	if d <= 0 {
		return time.Hour
	}
	return d
}

// overnight reports whether the configured workday crosses midnight.
func (s Settings) overnight() bool {
	return s.EndHour <= s.StartHour
}

// StartOfDay returns the workday start instant for the day containing
// now. For overnight shifts (end hour at or before start hour) the
// start rolls back to the previous day while the clock is still before
// the end hour.
func (s Settings) StartOfDay(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), s.StartHour, s.StartMinute, 0, 0, now.Location())
	if s.overnight() && now.Hour() <= s.EndHour {
		return start.AddDate(0, 0, -1)
	}
	return start
}

// EndOfDay returns the workday end instant paired with StartOfDay: for
// overnight shifts past the end hour, the end rolls forward to the
// next day.
func (s Settings) EndOfDay(now time.Time) time.Time {
	end := time.Date(now.Year(), now.Month(), now.Day(), s.EndHour, s.EndMinute, 0, 0, now.Location())
	if s.overnight() && now.Hour() > s.EndHour {
		return end.AddDate(0, 0, 1)
	}
	return end
}

// WorkDay is the duration between the start and end of the current
// workday.
func (s Settings) WorkDay(now time.Time) time.Duration {
	return s.EndOfDay(now).Sub(s.StartOfDay(now))
}

// IsWorkDay reports whether t falls on a configured day of week.
func (s Settings) IsWorkDay(t time.Time) bool {
	for _, d := range s.DaysOfWeek {
		if t.Weekday() == d {
			return true
		}
	}
	return false
}

// SlogLevel maps the configured level name onto a slog level.
// Unknown names default to info.
func (s Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads settings from dir, creating the file with defaults on
// first run. A malformed file is a load failure; no partial recovery
// is attempted.
func Load(dir string) (Settings, error) {
	path := filepath.Join(dir, SettingsFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		defaults := Default()
		if saveErr := Save(dir, defaults); saveErr != nil {
			return defaults, fmt.Errorf("writing default settings: %w", saveErr)
		}
		return defaults, nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading settings file %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.DaysOfWeek == nil {
		s.DaysOfWeek = Default().DaysOfWeek
	}
	return s, nil
}

// Save writes settings to dir atomically (temp file, then rename).
func Save(dir string, s Settings) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dir, SettingsFileName)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing settings temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming settings temp file: %w", err)
	}
	return nil
}

// DataDir resolves the working directory holding all persisted files:
// $PUNCHCLOCK_DIR if set, otherwise ~/.punchclock.
func DataDir() (string, error) {
	if dir := os.Getenv("PUNCHCLOCK_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".punchclock"), nil
}
