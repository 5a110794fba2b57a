package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	// The file now exists and loads back identically.
	_, statErr := os.Stat(filepath.Join(dir, SettingsFileName))
	require.NoError(t, statErr)

	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestLoadMalformedFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := Default()
	s.BaseURL = "https://jira.example.com"
	s.EnableJira = true
	s.IntervalHours = 0
	s.IntervalMinutes = 30
	require.NoError(t, Save(dir, s))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
	assert.Equal(t, 30*time.Minute, loaded.Interval())
}

func TestIntervalFallsBackToOneHour(t *testing.T) {
	s := Settings{}
	assert.Equal(t, time.Hour, s.Interval())
}

func TestStartAndEndOfDayRegularShift(t *testing.T) {
	s := Default() // 08:00–17:00
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.Local)

	assert.Equal(t, time.Date(2026, 3, 4, 8, 0, 0, 0, time.Local), s.StartOfDay(now))
	assert.Equal(t, time.Date(2026, 3, 4, 17, 0, 0, 0, time.Local), s.EndOfDay(now))
	assert.Equal(t, 9*time.Hour, s.WorkDay(now))
}

func TestStartAndEndOfDayOvernightShift(t *testing.T) {
	s := Default()
	s.StartHour = 22
	s.EndHour = 6

	// 03:00, mid-shift: the shift started yesterday evening.
	early := time.Date(2026, 3, 4, 3, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 3, 22, 0, 0, 0, time.Local), s.StartOfDay(early))
	assert.Equal(t, time.Date(2026, 3, 4, 6, 0, 0, 0, time.Local), s.EndOfDay(early))

	// 23:00, shift just started: it ends tomorrow morning.
	late := time.Date(2026, 3, 4, 23, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 4, 22, 0, 0, 0, time.Local), s.StartOfDay(late))
	assert.Equal(t, time.Date(2026, 3, 5, 6, 0, 0, 0, time.Local), s.EndOfDay(late))
}

func TestIsWorkDay(t *testing.T) {
	s := Default()

	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.Local)

	assert.True(t, s.IsWorkDay(monday))
	assert.False(t, s.IsWorkDay(saturday))
}

func TestSlogLevel(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		s := Settings{LogLevel: tc.name}
		assert.Equal(t, tc.want, s.SlogLevel(), "level %q", tc.name)
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("PUNCHCLOCK_DIR", "/tmp/punchclock-test")
	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/punchclock-test", dir)
}
