package domain

import (
	"fmt"
	"time"
)

// Issue is a work item the user can log time against. Issues are
// identified by their number alone; two issues with the same number
// are the same issue regardless of description.
type Issue struct {
	Number      string    `json:"issue_number"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

// NewIssue creates an issue stamped with the current time.
func NewIssue(number, description string) Issue {
	return Issue{Number: number, Description: description, Created: time.Now()}
}

func (i Issue) Equal(other Issue) bool {
	return i.Number == other.Number
}

func (i Issue) String() string {
	return fmt.Sprintf("%s - %s", i.Number, i.Description)
}

// IssueList is one of the two ordered partitions of known issues
// (active or deleted). An issue belongs to at most one list at a time;
// moving between lists is always a remove followed by an append.
type IssueList struct {
	Filepath string    `json:"filepath"`
	Issues   []Issue   `json:"issues"`
	Updated  time.Time `json:"updated"`
}

// NewIssueList returns an empty list bound to the given file.
func NewIssueList(filepath string) *IssueList {
	return &IssueList{Filepath: filepath, Issues: []Issue{}, Updated: time.Now()}
}

// Append adds an issue to the end of the list.
func (l *IssueList) Append(issue Issue) {
	l.Issues = append(l.Issues, issue)
	l.Updated = time.Now()
}

// Remove deletes the first issue matching by number. It reports
// whether anything was removed.
func (l *IssueList) Remove(issue Issue) bool {
	for i, existing := range l.Issues {
		if existing.Equal(issue) {
			l.Issues = append(l.Issues[:i], l.Issues[i+1:]...)
			l.Updated = time.Now()
			return true
		}
	}
	return false
}

// Contains reports whether an issue with the same number is present.
func (l *IssueList) Contains(issue Issue) bool {
	return l.Find(issue.Number) != nil
}

// Find returns the issue with the given number, or nil.
func (l *IssueList) Find(number string) *Issue {
	for i := range l.Issues {
		if l.Issues[i].Number == number {
			return &l.Issues[i]
		}
	}
	return nil
}

// MoveTo removes the issue from this list and appends it to dst.
// Both lists get fresh Updated timestamps. No-op if the issue is
// not in this list.
func (l *IssueList) MoveTo(dst *IssueList, issue Issue) bool {
	if !l.Remove(issue) {
		return false
	}
	dst.Append(issue)
	return true
}

// Len returns the number of issues in the list.
func (l *IssueList) Len() int {
	return len(l.Issues)
}
