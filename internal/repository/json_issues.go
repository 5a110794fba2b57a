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

const (
	// ActiveIssuesFileName holds the active issue list.
	ActiveIssuesFileName = "issues.json"
	// DeletedIssuesFileName holds the soft-deleted issue list.
	DeletedIssuesFileName = "deletedIssues.json"

	// deletedRetention is how long soft-deleted issues survive before
	// SaveDeleted purges them for good.
	deletedRetention = 30 * 24 * time.Hour
)

// JSONIssueRepo stores the active and deleted issue lists as JSON
// files in the data directory.
type JSONIssueRepo struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// NewJSONIssueRepo creates an issue repo rooted at dir.
func NewJSONIssueRepo(dir string, logger *slog.Logger) *JSONIssueRepo {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JSONIssueRepo{dir: dir, log: logger, now: time.Now}
}

func (r *JSONIssueRepo) LoadActive() (*domain.IssueList, error) {
	return r.loadList(filepath.Join(r.dir, ActiveIssuesFileName))
}

func (r *JSONIssueRepo) LoadDeleted() (*domain.IssueList, error) {
	return r.loadList(filepath.Join(r.dir, DeletedIssuesFileName))
}

func (r *JSONIssueRepo) SaveActive(list *domain.IssueList) error {
	list.Filepath = filepath.Join(r.dir, ActiveIssuesFileName)
	return r.saveList(list)
}

// SaveDeleted purges issues past the 30-day retention window before
// writing, then persists the rest verbatim.
func (r *JSONIssueRepo) SaveDeleted(list *domain.IssueList) error {
	list.Filepath = filepath.Join(r.dir, DeletedIssuesFileName)

	cutoff := r.now().Add(-deletedRetention)
	kept := list.Issues[:0]
	for _, issue := range list.Issues {
		if issue.Created.After(cutoff) {
			kept = append(kept, issue)
			continue
		}
		r.log.Info("purging expired deleted issue", "issue", issue.Number, "created", issue.Created)
	}
	list.Issues = kept

	return r.saveList(list)
}

func (r *JSONIssueRepo) loadList(path string) (*domain.IssueList, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		r.log.Info("issue list not found, creating new list", "path", path)
		list := domain.NewIssueList(path)
		if saveErr := r.saveList(list); saveErr != nil {
			return nil, saveErr
		}
		return list, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading issue list %s: %w", path, err)
	}

	var list domain.IssueList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing issue list %s: %w", path, err)
	}
	list.Filepath = path
	if list.Issues == nil {
		list.Issues = []domain.Issue{}
	}
	return &list, nil
}

func (r *JSONIssueRepo) saveList(list *domain.IssueList) error {
	if err := os.MkdirAll(filepath.Dir(list.Filepath), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling issue list: %w", err)
	}

	// Atomic write: temp file then rename, so a crash mid-save never
	// leaves a truncated list behind.
	tmpPath := list.Filepath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing issue list temp file: %w", err)
	}
	if err := os.Rename(tmpPath, list.Filepath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming issue list temp file: %w", err)
	}
	return nil
}
