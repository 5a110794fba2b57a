package cli

import (
	"fmt"
	"log/slog"

	"github.com/jmerrill/punchclock/internal/backend"
	"github.com/jmerrill/punchclock/internal/config"
	"github.com/jmerrill/punchclock/internal/repository"
	"github.com/spf13/cobra"
)

// App holds everything the commands need: the loaded settings, the
// stores, and the delivery fan-out constructed at startup from
// configuration.
type App struct {
	Settings config.Settings
	DataDir  string

	Issues  repository.IssueRepo
	Entries repository.EntryLogRepo

	// Fanout delivers submitted entries to all enabled sinks in order.
	Fanout *backend.Fanout
	// Jira is the Jira sink when enable_jira is set, nil otherwise.
	// Kept separately so the credential re-prompt flow can reach it.
	Jira *backend.JiraSink

	Log *slog.Logger

	// IsInteractive reports whether stdin is a terminal; the tracking
	// loop refuses to start without one.
	IsInteractive func() bool
}

func (a *App) logger() *slog.Logger {
	if a.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Log
}

// ReloadSettings re-reads settings from disk after a settings save,
// the only moment configuration is allowed to change.
func (a *App) ReloadSettings() error {
	s, err := config.Load(a.DataDir)
	if err != nil {
		return fmt.Errorf("reloading settings: %w", err)
	}
	a.Settings = s
	return nil
}

// NewRootCmd creates the top-level "punchclock" command and registers
// all subcommands against the provided App. Running it bare starts
// the interactive tracking loop.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "punchclock",
		Short: "Interval-based personal time tracker",
		Long: "punchclock periodically prompts for what you worked on, keeps the " +
			"entries in local JSON logs, and can forward them to a Jira worklog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(app)
		},
	}

	root.AddCommand(
		newTrackCmd(app),
		newRecordCmd(app),
		newIssueCmd(app),
		newSettingsCmd(app),
		newReportCmd(app),
	)

	return root
}
