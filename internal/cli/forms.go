package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jmerrill/punchclock/internal/config"
	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/jmerrill/punchclock/internal/scheduler"
)

// entryFields holds the form-bound values for one time-entry prompt.
type entryFields struct {
	issueNumber string
	comment     string
	action      domain.PromptOutcome
}

// newEntryForm builds the prompt for one span, offering the current
// active issues. The options are rebuilt every time the form is
// shown, so issues added mid-session appear immediately.
func newEntryForm(span scheduler.Span, issues []domain.Issue, f *entryFields) *huh.Form {
	options := make([]huh.Option[string], 0, len(issues))
	for _, issue := range issues {
		options = append(options, huh.NewOption(issue.String(), issue.Number))
	}

	title := fmt.Sprintf("What have you been working on for %s - %s?",
		span.From.Format("15:04"), span.To.Format("15:04"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&f.issueNumber),
			huh.NewInput().
				Title("Comment (optional)").
				Value(&f.comment),
			huh.NewSelect[domain.PromptOutcome]().
				Title("Record?").
				Options(
					huh.NewOption("Submit", domain.OutcomeSubmitted),
					huh.NewOption("Skip this interval", domain.OutcomeSkipped),
				).
				Value(&f.action),
		),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// buildEntry turns resolved form fields into an immutable TimeEntry
// for exactly the prompted span.
func buildEntry(span scheduler.Span, issues []domain.Issue, f *entryFields, id string) domain.TimeEntry {
	issue := domain.Issue{Number: f.issueNumber}
	for _, candidate := range issues {
		if candidate.Number == f.issueNumber {
			issue = candidate
			break
		}
	}
	return domain.TimeEntry{
		ID:       id,
		Issue:    issue,
		FromTime: span.From,
		ToTime:   span.To,
		Comment:  f.comment,
	}
}

// credentialFields holds the form-bound Jira credential values.
type credentialFields struct {
	username string
	password string
}

func newCredentialsForm(f *credentialFields, failed bool) *huh.Form {
	description := "Credentials are held in memory only and never written to disk."
	if failed {
		description = "Authentication with Jira failed, please try again."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&f.username).
				Validate(requireValue("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(requireValue("password")),
		).Title("Jira Credentials").Description(description),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// issueFields holds the form-bound values for creating an issue.
type issueFields struct {
	number      string
	description string
	another     bool
}

func newIssueForm(f *issueFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Issue number").
				Placeholder("PROJ-123").
				Value(&f.number).
				Validate(requireValue("issue number")),
			huh.NewInput().
				Title("Description").
				Value(&f.description).
				Validate(requireValue("description")),
			huh.NewConfirm().
				Title("Add another?").
				Value(&f.another),
		),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// issuePickForm selects one issue out of a list, e.g. for delete or
// restore.
func issuePickForm(title string, issues []domain.Issue, number *string) *huh.Form {
	options := make([]huh.Option[string], 0, len(issues))
	for _, issue := range issues {
		options = append(options, huh.NewOption(issue.String(), issue.Number))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(number),
		),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// settingsFields holds string-bound values for the settings editor.
type settingsFields struct {
	theme       string
	baseURL     string
	startHour   string
	startMinute string
	endHour     string
	endMinute   string
	intervalHr  string
	intervalMin string
	enableJira  bool
	logLevel    string
	days        []time.Weekday
}

func settingsFieldsFrom(s config.Settings) *settingsFields {
	return &settingsFields{
		theme:       s.Theme,
		baseURL:     s.BaseURL,
		startHour:   strconv.Itoa(s.StartHour),
		startMinute: strconv.Itoa(s.StartMinute),
		endHour:     strconv.Itoa(s.EndHour),
		endMinute:   strconv.Itoa(s.EndMinute),
		intervalHr:  strconv.Itoa(s.IntervalHours),
		intervalMin: strconv.Itoa(s.IntervalMinutes),
		enableJira:  s.EnableJira,
		logLevel:    s.LogLevel,
		days:        append([]time.Weekday(nil), s.DaysOfWeek...),
	}
}

// apply writes validated field values back onto a Settings record.
func (f *settingsFields) apply(s *config.Settings) {
	s.Theme = f.theme
	s.BaseURL = f.baseURL
	s.StartHour = atoiOr(f.startHour, s.StartHour)
	s.StartMinute = atoiOr(f.startMinute, s.StartMinute)
	s.EndHour = atoiOr(f.endHour, s.EndHour)
	s.EndMinute = atoiOr(f.endMinute, s.EndMinute)
	s.IntervalHours = atoiOr(f.intervalHr, s.IntervalHours)
	s.IntervalMinutes = atoiOr(f.intervalMin, s.IntervalMinutes)
	s.EnableJira = f.enableJira
	s.LogLevel = f.logLevel
	s.DaysOfWeek = append([]time.Weekday(nil), f.days...)
}

func newSettingsForm(f *settingsFields) *huh.Form {
	dayOptions := []huh.Option[time.Weekday]{
		huh.NewOption("Monday", time.Monday),
		huh.NewOption("Tuesday", time.Tuesday),
		huh.NewOption("Wednesday", time.Wednesday),
		huh.NewOption("Thursday", time.Thursday),
		huh.NewOption("Friday", time.Friday),
		huh.NewOption("Saturday", time.Saturday),
		huh.NewOption("Sunday", time.Sunday),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&f.theme),
			huh.NewInput().
				Title("Workday start hour").
				Value(&f.startHour).
				Validate(validateHour),
			huh.NewInput().
				Title("Workday start minute").
				Value(&f.startMinute).
				Validate(validateMinute),
			huh.NewInput().
				Title("Workday end hour").
				Value(&f.endHour).
				Validate(validateHour),
			huh.NewInput().
				Title("Workday end minute").
				Value(&f.endMinute).
				Validate(validateMinute),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Recording interval hours").
				Value(&f.intervalHr).
				Validate(validateHour),
			huh.NewInput().
				Title("Recording interval minutes").
				Value(&f.intervalMin).
				Validate(validateMinute),
			huh.NewMultiSelect[time.Weekday]().
				Title("Active days of week").
				Options(dayOptions...).
				Value(&f.days),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Forward entries to Jira?").
				Value(&f.enableJira),
			huh.NewInput().
				Title("Jira base URL").
				Placeholder("https://jira.example.com").
				Value(&f.baseURL),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warning", "warning"),
					huh.NewOption("Error", "error"),
				).
				Value(&f.logLevel),
		),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// retryForm asks whether to retry a failed load/save.
func retryForm(path string, opErr error, retry *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Retry?").
				Affirmative("Retry").
				Negative("Cancel").
				Value(retry),
		).Title("File Error").
			Description(fmt.Sprintf("An error occurred while accessing %s\nError: %v", path, opErr)),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
}

// ── validation helpers ───────────────────────────────────────────────────────

func requireValue(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateHour(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 23 {
		return fmt.Errorf("enter an hour between 0 and 23")
	}
	return nil
}

func validateMinute(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 59 {
		return fmt.Errorf("enter a minute between 0 and 59")
	}
	return nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
