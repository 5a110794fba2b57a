package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssueRepo(t *testing.T) *JSONIssueRepo {
	t.Helper()
	return NewJSONIssueRepo(t.TempDir(), nil)
}

func TestLoadActiveCreatesEmptyListOnFirstRun(t *testing.T) {
	repo := newTestIssueRepo(t)

	list, err := repo.LoadActive()
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())

	// The file was created on disk.
	_, statErr := os.Stat(filepath.Join(repo.dir, ActiveIssuesFileName))
	assert.NoError(t, statErr)
}

func TestSaveAndReloadActiveList(t *testing.T) {
	repo := newTestIssueRepo(t)

	list, err := repo.LoadActive()
	require.NoError(t, err)
	list.Append(domain.NewIssue("PROJ-1", "write the report"))
	list.Append(domain.NewIssue("PROJ-2", "review the report"))
	require.NoError(t, repo.SaveActive(list))

	reloaded, err := repo.LoadActive()
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "PROJ-1", reloaded.Issues[0].Number)
	assert.Equal(t, "PROJ-2", reloaded.Issues[1].Number)
}

func TestSaveDeletedPurgesIssuesOlderThanThirtyDays(t *testing.T) {
	repo := newTestIssueRepo(t)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)
	repo.now = func() time.Time { return now }

	list, err := repo.LoadDeleted()
	require.NoError(t, err)

	stale := domain.Issue{Number: "OLD-1", Description: "ancient", Created: now.AddDate(0, 0, -31)}
	fresh := domain.Issue{Number: "NEW-1", Description: "recent", Created: now.AddDate(0, 0, -5)}
	list.Append(stale)
	list.Append(fresh)

	require.NoError(t, repo.SaveDeleted(list))

	reloaded, err := repo.LoadDeleted()
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "NEW-1", reloaded.Issues[0].Number)
	assert.Equal(t, fresh.Created.Unix(), reloaded.Issues[0].Created.Unix(), "retained issues survive verbatim")
}

func TestSaveDeletedKeepsIssuesInsideRetention(t *testing.T) {
	repo := newTestIssueRepo(t)

	list, err := repo.LoadDeleted()
	require.NoError(t, err)
	list.Append(domain.NewIssue("PROJ-9", "recently deleted"))
	require.NoError(t, repo.SaveDeleted(list))

	reloaded, err := repo.LoadDeleted()
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestMoveBetweenListsPersists(t *testing.T) {
	repo := newTestIssueRepo(t)

	active, err := repo.LoadActive()
	require.NoError(t, err)
	deleted, err := repo.LoadDeleted()
	require.NoError(t, err)

	issue := domain.NewIssue("PROJ-3", "obsolete work")
	active.Append(issue)
	require.True(t, active.MoveTo(deleted, issue))

	require.NoError(t, repo.SaveActive(active))
	require.NoError(t, repo.SaveDeleted(deleted))

	activeAgain, err := repo.LoadActive()
	require.NoError(t, err)
	deletedAgain, err := repo.LoadDeleted()
	require.NoError(t, err)

	assert.False(t, activeAgain.Contains(issue))
	assert.True(t, deletedAgain.Contains(issue))
}

func TestLoadActiveMalformedFileIsAnError(t *testing.T) {
	repo := newTestIssueRepo(t)
	path := filepath.Join(repo.dir, ActiveIssuesFileName)
	require.NoError(t, os.WriteFile(path, []byte("[broken"), 0o600))

	_, err := repo.LoadActive()
	assert.Error(t, err)
}
