package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/jmerrill/punchclock/internal/repository"
	"github.com/jmerrill/punchclock/internal/scheduler"
	"github.com/spf13/cobra"
)

func newRecordCmd(app *App) *cobra.Command {
	var recordNow bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Prompt for elapsed intervals once, then exit",
		Long: "Prompts for every whole recording interval elapsed since the start " +
			"of the workday, in order, without starting the tracking loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(app, recordNow)
		},
	}
	cmd.Flags().BoolVar(&recordNow, "now", false,
		"record the time since the last interval boundary up to the current instant")
	return cmd
}

func runRecord(app *App, recordNow bool) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return fmt.Errorf("recording needs an interactive terminal")
	}

	now := time.Now()
	start := app.Settings.StartOfDay(now)
	if start.After(now) {
		start = now
	}
	sched := scheduler.New(start, app.Settings.Interval(), app.Log)

	prompt := func(span scheduler.Span) domain.PromptOutcome {
		return promptSpan(app, span)
	}

	if recordNow {
		if !now.After(sched.LastRecorded()) {
			fmt.Println(dim("Nothing to record yet."))
			return nil
		}
		sched.RecordNow(now, prompt)
		return nil
	}

	if resolved := sched.CatchUp(now, prompt); resolved == 0 {
		fmt.Println(dim("No whole recording interval has elapsed yet."))
		fmt.Println(dim("Use --now to record up to the current instant anyway."))
	}
	return nil
}

// promptSpan collects and delivers one entry for the span. Closing the
// form counts as a cancel.
func promptSpan(app *App, span scheduler.Span) domain.PromptOutcome {
	var active *domain.IssueList
	err := withRetry(runRetryPrompt(repository.ActiveIssuesFileName), func() error {
		var loadErr error
		active, loadErr = app.Issues.LoadActive()
		return loadErr
	})
	if err != nil {
		fmt.Println(styleRed.Render(err.Error()))
		return domain.OutcomeCancelled
	}
	if active.Len() == 0 {
		fmt.Println(styleYellow.Render("No active issues to log against."))
		fmt.Println(dim("Add one first: punchclock issue add"))
		return domain.OutcomeCancelled
	}

	f := &entryFields{}
	if err := newEntryForm(span, active.Issues, f).Run(); err != nil {
		return domain.OutcomeCancelled
	}
	if f.action == domain.OutcomeSkipped {
		return domain.OutcomeSkipped
	}

	entry := buildEntry(span, active.Issues, f, uuid.New().String())
	app.logger().Info("time entry submitted",
		"issue", entry.Issue.Number, "from", entry.FromTime, "to", entry.ToTime)

	warnings := deliverEntry(context.Background(), app, entry, promptCredentials)
	for _, warning := range warnings {
		fmt.Println(styleYellow.Render(warning))
	}
	if len(warnings) == 0 {
		fmt.Println(styleGreen.Render(fmt.Sprintf("Recorded %s - %s against %s.",
			span.From.Format("15:04"), span.To.Format("15:04"), entry.Issue.Number)))
	}
	return domain.OutcomeSubmitted
}

// promptCredentials runs the standalone credentials form; closing it
// abandons the Jira delivery.
func promptCredentials(failed bool) (string, string, bool) {
	f := &credentialFields{}
	if err := newCredentialsForm(f, failed).Run(); err != nil {
		return "", "", false
	}
	return f.username, f.password, true
}

// runRetryPrompt adapts the Retry/Cancel form for withRetry.
func runRetryPrompt(path string) func(error) bool {
	return func(opErr error) bool {
		var retry bool
		if err := retryForm(path, opErr, &retry).Run(); err != nil {
			return false
		}
		return retry
	}
}
