package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmerrill/punchclock/internal/backend"
	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/jmerrill/punchclock/internal/repository"
	"github.com/jmerrill/punchclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() domain.TimeEntry {
	return testutil.NewTestEntry(domain.NewIssue("PROJ-1", "Flux capacitor"))
}

func testApp(t *testing.T, jiraURL string) *App {
	t.Helper()
	dir := t.TempDir()
	entries := repository.NewJSONEntryLogRepo(dir, nil)

	app := &App{
		DataDir: dir,
		Issues:  repository.NewJSONIssueRepo(dir, nil),
		Entries: entries,
	}
	sinks := []backend.Sink{backend.NewFileSink(entries, nil)}
	if jiraURL != "" {
		app.Jira = backend.NewJiraSink(jiraURL, nil)
		sinks = append(sinks, app.Jira)
	}
	app.Fanout = backend.NewFanout(nil, sinks...)
	return app
}

func TestDeliverEntryPromptsForMissingCredentials(t *testing.T) {
	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	app := testApp(t, server.URL)

	prompts := 0
	creds := func(failed bool) (string, string, bool) {
		prompts++
		assert.False(t, failed)
		return "user", "hunter2", true
	}

	warnings := deliverEntry(context.Background(), app, testEntry(), creds)

	assert.Empty(t, warnings)
	assert.Equal(t, 1, prompts)
	assert.Equal(t, "Basic dXNlcjpodW50ZXIy", sawAuth)
}

func TestDeliverEntryRepromptsAfterRejection(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	app := testApp(t, server.URL)

	var failedFlags []bool
	creds := func(failed bool) (string, string, bool) {
		failedFlags = append(failedFlags, failed)
		return "user", "pw", true
	}

	warnings := deliverEntry(context.Background(), app, testEntry(), creds)

	assert.Empty(t, warnings)
	assert.Equal(t, 2, attempts)
	// First prompt fills the missing credential; the second follows
	// the 403 rejection.
	assert.Equal(t, []bool{false, true}, failedFlags)
	assert.True(t, app.Jira.Authenticated())
}

func TestDeliverEntryCancelledPromptAbandonsJira(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	app := testApp(t, server.URL)

	creds := func(failed bool) (string, string, bool) { return "", "", false }

	warnings := deliverEntry(context.Background(), app, testEntry(), creds)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "jira")
	assert.Zero(t, requests, "declining the prompt must not hit the server")

	// The file sink still recorded the entry.
	log, err := app.Entries.LoadDay(testEntry().FromTime)
	require.NoError(t, err)
	assert.Len(t, log.Entries, 1)
}

func TestDeliverEntryFileOnly(t *testing.T) {
	app := testApp(t, "")

	warnings := deliverEntry(context.Background(), app, testEntry(), nil)

	assert.Empty(t, warnings)
	log, err := app.Entries.LoadDay(testEntry().FromTime)
	require.NoError(t, err)
	assert.Len(t, log.Entries, 1)
}

func TestWithRetryStopsWhenDeclined(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := withRetry(func(error) bool { return false }, func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRunsUntilSuccess(t *testing.T) {
	calls := 0
	err := withRetry(func(error) bool { return true }, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryNilPromptFailsImmediately(t *testing.T) {
	boom := errors.New("boom")
	err := withRetry(nil, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
