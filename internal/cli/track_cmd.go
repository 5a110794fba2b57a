package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/jmerrill/punchclock/internal/config"
	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/jmerrill/punchclock/internal/scheduler"
	"github.com/spf13/cobra"
)

// pollInterval is how often the idle loop re-checks the clock, so the
// next prompt fires within half a minute of becoming due.
const pollInterval = 30 * time.Second

func newTrackCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Run the interactive tracking loop",
		Long: "Idles until the next recording interval elapses, then prompts for " +
			"what you worked on. Wakes after a gap prompt once per elapsed interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(app)
		},
	}
}

func runTrack(app *App) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return fmt.Errorf("the tracking loop needs an interactive terminal; use %q instead", "punchclock record")
	}

	m := newTrackModel(app)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// trackMode is the closed set of screens the tracking loop moves
// between. Unknown events in any mode resolve to a cancel, never a
// crash.
type trackMode int

const (
	modeIdle trackMode = iota
	modeEntry
	modeCredentials
	modeManage
	modeNewIssue
	modePickDelete
	modePickRestore
	modeSettings
	modeRetry
)

type tickMsg time.Time

// retryState carries one failed store operation through the
// Retry/Cancel prompt.
type retryState struct {
	err     error
	path    string
	confirm bool
	op      func() error
}

type trackModel struct {
	app   *App
	sched *scheduler.Scheduler
	mode  trackMode
	form  *huh.Form

	// Entry prompt state.
	span       scheduler.Span
	fields     *entryFields
	issues     []domain.Issue
	manual     bool // record-now prompt rather than interval catch-up
	catchingUp bool

	// Credential re-prompt state. pendingWarnings holds failures from
	// sinks that already ran, so the credentials pause does not eat
	// them.
	creds           *credentialFields
	credsFailed     bool
	pendingEntry    *domain.TimeEntry
	pendingWarnings []string

	// Issue management state.
	manageAction string
	issueFields  *issueFields
	pickNumber   string

	// Settings editor state.
	sfields *settingsFields

	retry *retryState

	// status is the transient message line shown while idle.
	status string
	// snoozedUntil suppresses automatic prompts after a cancelled
	// catch-up, until one more interval has passed.
	snoozedUntil time.Time

	width    int
	quitting bool
	now      func() time.Time
}

func newTrackModel(app *App) *trackModel {
	return newTrackModelAt(app, time.Now)
}

// newTrackModelAt injects the clock so tests can drive the loop
// deterministically.
func newTrackModelAt(app *App, now func() time.Time) *trackModel {
	launch := now()
	start := app.Settings.StartOfDay(launch)
	if start.After(launch) {
		start = launch
	}
	return &trackModel{
		app:   app,
		sched: scheduler.New(start, app.Settings.Interval(), app.Log),
		mode:  modeIdle,
		now:   now,
	}
}

func (m *trackModel) Init() tea.Cmd {
	// Fire one immediate tick so intervals elapsed before launch are
	// caught up right away.
	return tea.Batch(
		func() tea.Msg { return tickMsg(m.now()) },
		m.scheduleTick(),
	)
}

func (m *trackModel) scheduleTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *trackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		var cmds []tea.Cmd
		if m.mode == modeIdle {
			// A prompt started here is a brand-new form and needs its
			// Init; an already-active form must not be re-initialized.
			m.maybeStartDuePrompt(time.Time(msg))
			cmds = append(cmds, m.initFormIfNew())
		}
		cmds = append(cmds, m.scheduleTick())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateForm(msg)
}

// initFormIfNew initializes a freshly built form exactly once.
func (m *trackModel) initFormIfNew() tea.Cmd {
	if m.form != nil && m.mode != modeIdle && m.form.State == huh.StateNormal {
		return m.form.Init()
	}
	return nil
}

func (m *trackModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.mode == modeIdle {
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.startManualPrompt()
			return m, m.initFormIfNew()
		case "i":
			m.startManage()
			return m, m.initFormIfNew()
		case "s":
			m.startSettings()
			return m, m.initFormIfNew()
		}
		return m, nil
	}

	// Escape closes the current form; what that means depends on the
	// mode, mirroring a closed window in each screen.
	if msg.Type == tea.KeyEsc {
		return m.handleCancel()
	}

	return m.updateForm(msg)
}

func (m *trackModel) handleCancel() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeEntry:
		if m.catchingUp {
			// Stop the catch-up session without advancing; resume
			// from this same interval after a cooldown.
			m.snoozedUntil = m.now().Add(m.sched.Interval())
			m.status = dim("Catch-up cancelled, remaining intervals resume later.")
		}
		m.toIdle()
	case modeCredentials:
		// Abandon the Jira delivery for this entry, keeping warnings
		// from sinks that already ran.
		m.pendingEntry = nil
		warnings := append(m.pendingWarnings, "jira: entry not forwarded (no credentials)")
		m.pendingWarnings = nil
		m.status = styleYellow.Render(strings.Join(warnings, "; "))
		m.resumeAfterDelivery()
	case modeNewIssue, modePickDelete, modePickRestore:
		m.startManage()
		return m, m.initFormIfNew()
	case modeRetry:
		m.toIdle()
	default:
		m.toIdle()
	}
	return m, m.initFormIfNew()
}

func (m *trackModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil || m.mode == modeIdle {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.handleFormComplete()
	}
	return m, cmd
}

func (m *trackModel) handleFormComplete() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeEntry:
		m.resolveEntryPrompt()
	case modeCredentials:
		m.resolveCredentials()
	case modeManage:
		m.resolveManageAction()
	case modeNewIssue:
		m.resolveNewIssue()
	case modePickDelete:
		m.resolvePick(true)
	case modePickRestore:
		m.resolvePick(false)
	case modeSettings:
		m.resolveSettings()
	case modeRetry:
		m.resolveRetry()
	default:
		m.toIdle()
	}
	return m, m.initFormIfNew()
}

// ── prompt lifecycle ─────────────────────────────────────────────────────────

func (m *trackModel) maybeStartDuePrompt(now time.Time) {
	if !m.app.Settings.IsWorkDay(now) {
		return
	}
	if now.Before(m.snoozedUntil) {
		return
	}
	if !m.sched.Due(now) {
		return
	}
	m.catchingUp = true
	m.manual = false
	m.startEntryPrompt(m.sched.NextSpan())
}

func (m *trackModel) startManualPrompt() {
	now := m.now()
	if !now.After(m.sched.LastRecorded()) {
		m.status = dim("Nothing to record yet.")
		return
	}
	m.manual = true
	m.catchingUp = false
	m.startEntryPrompt(scheduler.Span{From: m.sched.LastRecorded(), To: now})
}

func (m *trackModel) startEntryPrompt(span scheduler.Span) {
	active, err := m.app.Issues.LoadActive()
	if err != nil {
		m.app.logger().Error("loading active issues", "error", err)
		m.status = styleRed.Render(err.Error())
		m.snoozedUntil = m.now().Add(pollInterval)
		m.toIdle()
		return
	}
	if active.Len() == 0 {
		m.status = styleYellow.Render("No active issues to log against, press i to add one.")
		m.snoozedUntil = m.now().Add(m.sched.Interval())
		m.toIdle()
		return
	}

	m.span = span
	m.issues = active.Issues
	m.fields = &entryFields{}
	m.form = newEntryForm(span, m.issues, m.fields)
	m.mode = modeEntry
}

func (m *trackModel) resolveEntryPrompt() {
	outcome := m.fields.action
	now := m.now()

	// The interval is resolved the moment the user submits or skips;
	// delivery results do not affect scheduling.
	if m.manual {
		m.sched.MarkRecorded(m.span.To)
	} else {
		m.sched.Advance()
	}

	if outcome == domain.OutcomeSkipped {
		m.status = dim(fmt.Sprintf("Skipped %s - %s.",
			m.span.From.Format("15:04"), m.span.To.Format("15:04")))
		m.resumeAfterDelivery()
		return
	}

	entry := buildEntry(m.span, m.issues, m.fields, uuid.New().String())
	m.app.logger().Info("time entry submitted",
		"issue", entry.Issue.Number, "from", entry.FromTime, "to", entry.ToTime)
	m.deliver(entry, now)
}

// deliver fans the entry out. A Jira credential gap pauses delivery
// on the credentials form; everything else resolves immediately.
func (m *trackModel) deliver(entry domain.TimeEntry, now time.Time) {
	var warnings []string
	for _, result := range m.app.Fanout.Deliver(context.Background(), entry) {
		resp := result.Response
		if !resp.Success && m.app.Jira != nil && result.Sink.Name() == m.app.Jira.Name() && !m.app.Jira.Authenticated() {
			// Missing or just-rejected credential: collect one from
			// the user and retry this sink alone.
			m.pendingEntry = &entry
			m.pendingWarnings = warnings
			m.credsFailed = false
			m.startCredentialsForm()
			return
		}
		if !resp.Success {
			warnings = append(warnings, deliveryWarning(result.Sink.Name(), resp))
		}
	}
	m.finishDelivery(warnings)
}

func (m *trackModel) startCredentialsForm() {
	m.creds = &credentialFields{}
	m.form = newCredentialsForm(m.creds, m.credsFailed)
	m.mode = modeCredentials
}

func (m *trackModel) resolveCredentials() {
	m.app.Jira.SetCredentials(m.creds.username, m.creds.password)
	resp := m.app.Jira.LogWork(context.Background(), *m.pendingEntry)

	if !resp.Success && !m.app.Jira.Authenticated() {
		// Rejected again; ask once more. Escape abandons.
		m.credsFailed = true
		m.startCredentialsForm()
		return
	}

	warnings := m.pendingWarnings
	if !resp.Success {
		warnings = append(warnings, deliveryWarning(m.app.Jira.Name(), resp))
	}
	m.pendingEntry = nil
	m.pendingWarnings = nil
	m.finishDelivery(warnings)
}

func (m *trackModel) finishDelivery(warnings []string) {
	if len(warnings) > 0 {
		m.status = styleYellow.Render(strings.Join(warnings, "; "))
	} else {
		m.status = styleGreen.Render(fmt.Sprintf("Recorded %s - %s.",
			m.span.From.Format("15:04"), m.span.To.Format("15:04")))
	}
	m.resumeAfterDelivery()
}

// resumeAfterDelivery continues catch-up if more whole intervals are
// still pending, otherwise returns to idle.
func (m *trackModel) resumeAfterDelivery() {
	if m.catchingUp && m.sched.Due(m.now()) {
		m.startEntryPrompt(m.sched.NextSpan())
		return
	}
	m.toIdle()
}

// ── issue management ─────────────────────────────────────────────────────────

func (m *trackModel) startManage() {
	m.manageAction = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Manage Issues").
				Options(
					huh.NewOption("Add a new issue", "add"),
					huh.NewOption("Delete an issue", "delete"),
					huh.NewOption("Restore a deleted issue", "restore"),
					huh.NewOption("Back", "back"),
				).
				Value(&m.manageAction),
		),
	).WithTheme(punchclockHuhTheme()).WithShowHelp(false)
	m.mode = modeManage
}

func (m *trackModel) resolveManageAction() {
	switch m.manageAction {
	case "add":
		m.issueFields = &issueFields{}
		m.form = newIssueForm(m.issueFields)
		m.mode = modeNewIssue
	case "delete":
		m.startPick(true)
	case "restore":
		m.startPick(false)
	default:
		m.toIdle()
	}
}

func (m *trackModel) resolveNewIssue() {
	issue := domain.NewIssue(m.issueFields.number, m.issueFields.description)
	again := m.issueFields.another

	var dupErr error
	op := func() error {
		active, err := m.app.Issues.LoadActive()
		if err != nil {
			return err
		}
		deleted, err := m.app.Issues.LoadDeleted()
		if err != nil {
			return err
		}
		if dupErr = ensureNewNumber(active, deleted, issue.Number); dupErr != nil {
			return nil
		}
		active.Append(issue)
		return m.app.Issues.SaveActive(active)
	}
	if err := op(); err != nil {
		m.startRetry(issue.Number, err, op)
		return
	}
	if dupErr != nil {
		m.status = styleYellow.Render(dupErr.Error())
		m.startManage()
		return
	}

	m.status = styleGreen.Render("Added " + issue.String())
	if again {
		m.issueFields = &issueFields{}
		m.form = newIssueForm(m.issueFields)
		m.mode = modeNewIssue
		return
	}
	m.startManage()
}

func (m *trackModel) startPick(deleting bool) {
	var source *domain.IssueList
	var err error
	if deleting {
		source, err = m.app.Issues.LoadActive()
	} else {
		source, err = m.app.Issues.LoadDeleted()
	}
	if err != nil {
		m.app.logger().Error("loading issue list", "error", err)
		m.status = styleRed.Render(err.Error())
		m.toIdle()
		return
	}
	if source.Len() == 0 {
		m.status = dim("Nothing to choose from.")
		m.startManage()
		return
	}

	m.pickNumber = ""
	title := "Restore which issue?"
	if deleting {
		title = "Delete which issue?"
	}
	m.form = issuePickForm(title, source.Issues, &m.pickNumber)
	if deleting {
		m.mode = modePickDelete
	} else {
		m.mode = modePickRestore
	}
}

// resolvePick moves the chosen issue between the active and deleted
// lists and persists both.
func (m *trackModel) resolvePick(deleting bool) {
	number := m.pickNumber
	op := func() error {
		active, err := m.app.Issues.LoadActive()
		if err != nil {
			return err
		}
		deleted, err := m.app.Issues.LoadDeleted()
		if err != nil {
			return err
		}

		src, dst := active, deleted
		if !deleting {
			src, dst = deleted, active
		}
		issue := src.Find(number)
		if issue == nil {
			return fmt.Errorf("issue %s is no longer in the list", number)
		}
		src.MoveTo(dst, *issue)

		if err := m.app.Issues.SaveActive(active); err != nil {
			return err
		}
		return m.app.Issues.SaveDeleted(deleted)
	}
	if err := op(); err != nil {
		m.startRetry(number, err, op)
		return
	}

	if deleting {
		m.status = dim("Deleted " + number)
	} else {
		m.status = styleGreen.Render("Restored " + number)
	}
	m.startManage()
}

// ── settings ─────────────────────────────────────────────────────────────────

func (m *trackModel) startSettings() {
	m.sfields = settingsFieldsFrom(m.app.Settings)
	m.form = newSettingsForm(m.sfields)
	m.mode = modeSettings
}

func (m *trackModel) resolveSettings() {
	updated := m.app.Settings
	m.sfields.apply(&updated)

	op := func() error { return config.Save(m.app.DataDir, updated) }
	if err := op(); err != nil {
		m.startRetry(config.SettingsFileName, err, op)
		return
	}

	m.app.Settings = updated
	m.sched.SetInterval(updated.Interval())
	m.status = styleGreen.Render("Settings saved.")
	m.toIdle()
}

// ── retry prompt ─────────────────────────────────────────────────────────────

func (m *trackModel) startRetry(path string, err error, op func() error) {
	m.app.logger().Error("store operation failed", "path", path, "error", err)
	m.retry = &retryState{err: err, path: path, op: op}
	m.form = retryForm(path, err, &m.retry.confirm)
	m.mode = modeRetry
}

func (m *trackModel) resolveRetry() {
	r := m.retry
	m.retry = nil
	if !r.confirm {
		m.status = styleYellow.Render("Change not saved.")
		m.toIdle()
		return
	}
	if err := r.op(); err != nil {
		m.startRetry(r.path, err, r.op)
		return
	}
	m.status = styleGreen.Render("Saved.")
	m.toIdle()
}

// ── idle view ────────────────────────────────────────────────────────────────

func (m *trackModel) toIdle() {
	m.mode = modeIdle
	m.form = nil
	m.manual = false
	m.catchingUp = false
}

func (m *trackModel) idleKeys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record now")),
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "issues")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (m *trackModel) View() string {
	if m.quitting {
		return ""
	}
	if m.mode != modeIdle && m.form != nil {
		return "\n" + m.form.View()
	}

	now := m.now()
	var b strings.Builder
	b.WriteString("\n  " + styleHeader.Render("Punchclock") + "\n\n")
	b.WriteString(fmt.Sprintf("  Last recorded  %s\n", bold(m.sched.LastRecorded().Format("15:04"))))

	next := m.sched.NextDue()
	if m.sched.Due(now) {
		b.WriteString("  Next prompt    " + styleYellow.Render("due now") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("  Next prompt    %s (in %s)\n",
			bold(next.Format("15:04")), next.Sub(now).Round(time.Minute)))
	}

	names := make([]string, 0, 2)
	for _, sink := range m.app.Fanout.Sinks() {
		names = append(names, sink.Name())
	}
	b.WriteString("  Recording to   " + dim(strings.Join(names, ", ")) + "\n")

	if !m.app.Settings.IsWorkDay(now) {
		b.WriteString("\n  " + dim("Today is not an active day, prompts are paused.") + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + m.status + "\n")
	}

	hints := make([]string, 0, 4)
	for _, binding := range m.idleKeys() {
		hints = append(hints, fmt.Sprintf("%s %s", binding.Help().Key, dim(binding.Help().Desc)))
	}
	b.WriteString("\n  " + strings.Join(hints, dim("  ·  ")) + "\n")
	return b.String()
}
