package cli

import (
	"fmt"
	"strings"

	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/spf13/cobra"
)

func newIssueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Manage the issues time can be logged against",
	}
	cmd.AddCommand(
		newIssueListCmd(app),
		newIssueAddCmd(app),
		newIssueRemoveCmd(app),
		newIssueRestoreCmd(app),
	)
	return cmd
}

func newIssueListCmd(app *App) *cobra.Command {
	var showDeleted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Issues.LoadActive()
			if err != nil {
				return err
			}
			header := "Active issues"
			empty := "No active issues."
			if showDeleted {
				if list, err = app.Issues.LoadDeleted(); err != nil {
					return err
				}
				header = "Deleted issues (purged 30 days after creation)"
				empty = "No deleted issues."
			}

			if list.Len() == 0 {
				fmt.Println(dim(empty))
				return nil
			}
			fmt.Println(styleHeader.Render(header))
			for _, issue := range list.Issues {
				fmt.Printf("  %s  %s\n", bold(issue.Number), issue.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDeleted, "deleted", false, "list deleted issues instead")
	return cmd
}

func newIssueAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add [number] [description...]",
		Short: "Add an issue to the active list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) >= 2 {
				return addIssue(app, domain.NewIssue(args[0], strings.Join(args[1:], " ")))
			}
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("usage: punchclock issue add <number> <description>")
			}
			// No arguments: fall back to the interactive form, with
			// its add-another loop.
			for {
				f := &issueFields{}
				if err := newIssueForm(f).Run(); err != nil {
					return nil
				}
				if err := addIssue(app, domain.NewIssue(f.number, f.description)); err != nil {
					return err
				}
				if !f.another {
					return nil
				}
			}
		},
	}
}

// ensureNewNumber rejects a number already present on either list, so
// an issue can never sit on both at once.
func ensureNewNumber(active, deleted *domain.IssueList, number string) error {
	if active.Find(number) != nil {
		return fmt.Errorf("issue %s is already in the active list", number)
	}
	if deleted.Find(number) != nil {
		return fmt.Errorf("issue %s is in the deleted list, restore it instead", number)
	}
	return nil
}

func addIssue(app *App, issue domain.Issue) error {
	active, err := app.Issues.LoadActive()
	if err != nil {
		return err
	}
	deleted, err := app.Issues.LoadDeleted()
	if err != nil {
		return err
	}
	if err := ensureNewNumber(active, deleted, issue.Number); err != nil {
		return err
	}
	active.Append(issue)
	if err := app.Issues.SaveActive(active); err != nil {
		return err
	}
	fmt.Println(styleGreen.Render("Added " + issue.String()))
	return nil
}

func newIssueRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <number>",
		Aliases: []string{"remove", "delete"},
		Short:   "Move an issue to the deleted list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveIssue(app, args[0], true)
		},
	}
}

func newIssueRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <number>",
		Short: "Move a deleted issue back to the active list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveIssue(app, args[0], false)
		},
	}
}

// moveIssue shifts one issue between the active and deleted lists and
// persists both. Saving the deleted list also purges expired issues.
func moveIssue(app *App, number string, deleting bool) error {
	active, err := app.Issues.LoadActive()
	if err != nil {
		return err
	}
	deleted, err := app.Issues.LoadDeleted()
	if err != nil {
		return err
	}

	src, dst, where := active, deleted, "active"
	if !deleting {
		src, dst, where = deleted, active, "deleted"
	}

	issue := src.Find(number)
	if issue == nil {
		return fmt.Errorf("issue %s is not in the %s list", number, where)
	}
	src.MoveTo(dst, *issue)

	if err := app.Issues.SaveActive(active); err != nil {
		return err
	}
	if err := app.Issues.SaveDeleted(deleted); err != nil {
		return err
	}

	if deleting {
		fmt.Println(dim("Deleted " + issue.String()))
	} else {
		fmt.Println(styleGreen.Render("Restored " + issue.String()))
	}
	return nil
}
