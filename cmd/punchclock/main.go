package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmerrill/punchclock/internal/backend"
	"github.com/jmerrill/punchclock/internal/cli"
	"github.com/jmerrill/punchclock/internal/config"
	"github.com/jmerrill/punchclock/internal/repository"
	"github.com/mattn/go-isatty"
)

const logFileName = "punchclock.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Data directory: env var or default ~/.punchclock
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	settings, err := config.Load(dataDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// Log to a file inside the data directory; the terminal belongs to
	// the TUI.
	logFile, err := os.OpenFile(filepath.Join(dataDir, logFileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: settings.SlogLevel(),
	}))

	// Wire repositories
	issueRepo := repository.NewJSONIssueRepo(dataDir, logger)
	entryRepo := repository.NewJSONEntryLogRepo(dataDir, logger)

	// Wire delivery sinks: the local file log always records first, so
	// a Jira outage never loses an entry.
	app := &cli.App{
		Settings: settings,
		DataDir:  dataDir,
		Issues:   issueRepo,
		Entries:  entryRepo,
		Log:      logger,
	}
	sinks := []backend.Sink{backend.NewFileSink(entryRepo, logger)}
	if settings.EnableJira {
		app.Jira = backend.NewJiraSink(settings.BaseURL, logger)
		sinks = append(sinks, app.Jira)
	}
	app.Fanout = backend.NewFanout(logger, sinks...)

	// Detect interactive terminal for the prompt-driven entrypoints.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
