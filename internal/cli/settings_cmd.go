package cli

import (
	"fmt"
	"strings"

	"github.com/jmerrill/punchclock/internal/config"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or edit settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(app)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showSettings(app)
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit settings interactively",
			RunE: func(cmd *cobra.Command, args []string) error {
				return editSettings(app)
			},
		},
	)
	return cmd
}

func showSettings(app *App) error {
	s := app.Settings

	days := make([]string, 0, len(s.DaysOfWeek))
	for _, day := range s.DaysOfWeek {
		days = append(days, day.String())
	}
	jira := "disabled"
	if s.EnableJira {
		jira = s.BaseURL
		if jira == "" {
			jira = "enabled (no base URL set)"
		}
	}

	fmt.Println(styleHeader.Render("Settings") + dim("  ("+app.DataDir+")"))
	fmt.Printf("  Theme       %s\n", bold(s.Theme))
	fmt.Printf("  Workday     %s - %s\n",
		bold(fmt.Sprintf("%02d:%02d", s.StartHour, s.StartMinute)),
		bold(fmt.Sprintf("%02d:%02d", s.EndHour, s.EndMinute)))
	fmt.Printf("  Interval    %s\n", bold(s.Interval().String()))
	fmt.Printf("  Days        %s\n", bold(strings.Join(days, ", ")))
	fmt.Printf("  Jira        %s\n", bold(jira))
	fmt.Printf("  Log level   %s\n", bold(s.LogLevel))
	return nil
}

func editSettings(app *App) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return fmt.Errorf("editing settings needs an interactive terminal; edit %s directly instead",
			config.SettingsFileName)
	}

	f := settingsFieldsFrom(app.Settings)
	if err := newSettingsForm(f).Run(); err != nil {
		// Closing the form leaves everything unchanged.
		return nil
	}

	updated := app.Settings
	f.apply(&updated)

	err := withRetry(runRetryPrompt(config.SettingsFileName), func() error {
		return config.Save(app.DataDir, updated)
	})
	if err != nil {
		return err
	}

	sinkChanged := updated.EnableJira != app.Settings.EnableJira
	if err := app.ReloadSettings(); err != nil {
		return err
	}
	app.logger().Info("settings updated", "interval", updated.Interval(), "jira", updated.EnableJira)
	fmt.Println(styleGreen.Render("Settings saved."))
	if sinkChanged {
		fmt.Println(dim("Restart the tracking loop to pick up the sink change."))
	}
	return nil
}
