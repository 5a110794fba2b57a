package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recorded time per issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return runReport(app, days, time.Now())
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days to include, ending today")
	return cmd
}

type issueTotal struct {
	issue    domain.Issue
	duration time.Duration
	entries  int
}

func runReport(app *App, days int, now time.Time) error {
	to := now
	from := now.AddDate(0, 0, -(days - 1))

	entries, err := app.Entries.LoadRange(from, to)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(dim(fmt.Sprintf("No entries recorded in the last %d day(s).", days)))
		return nil
	}

	totals := summarize(entries)

	fmt.Println(styleHeader.Render(fmt.Sprintf("Time recorded, last %d day(s)", days)))
	var grand time.Duration
	for _, t := range totals {
		grand += t.duration
		fmt.Printf("  %-12s %8s  %s %s\n",
			bold(t.issue.Number),
			formatDuration(t.duration),
			t.issue.Description,
			dim(fmt.Sprintf("(%d entries)", t.entries)))
	}
	fmt.Printf("  %-12s %8s\n", bold("total"), bold(formatDuration(grand)))
	return nil
}

// summarize groups entries per issue number and orders the result by
// recorded time, longest first.
func summarize(entries []domain.TimeEntry) []issueTotal {
	byNumber := make(map[string]*issueTotal)
	for _, entry := range entries {
		t, ok := byNumber[entry.Issue.Number]
		if !ok {
			t = &issueTotal{issue: entry.Issue}
			byNumber[entry.Issue.Number] = t
		}
		t.duration += entry.Duration()
		t.entries++
	}

	totals := make([]issueTotal, 0, len(byNumber))
	for _, t := range byNumber {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].duration != totals[j].duration {
			return totals[i].duration > totals[j].duration
		}
		return totals[i].issue.Number < totals[j].issue.Number
	})
	return totals
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
