package cli

import (
	"context"
	"fmt"

	"github.com/jmerrill/punchclock/internal/backend"
	"github.com/jmerrill/punchclock/internal/domain"
)

// CredentialPrompt collects Jira credentials from the user. failed
// indicates a previous attempt was rejected. ok=false means the user
// cancelled, which abandons the Jira delivery.
type CredentialPrompt func(failed bool) (username, password string, ok bool)

// deliverEntry fans a submitted entry out to every enabled sink. When
// the Jira sink reports a missing or rejected credential, the user is
// re-prompted and that one sink is retried with the fresh credential;
// retries are bounded by the user's willingness to keep typing, never
// automatic. Returns user-facing warnings for failed deliveries.
func deliverEntry(ctx context.Context, app *App, entry domain.TimeEntry, promptCreds CredentialPrompt) []string {
	var warnings []string
	for _, result := range app.Fanout.Deliver(ctx, entry) {
		resp := result.Response
		if app.Jira != nil && result.Sink == backend.Sink(app.Jira) {
			resp = retryJiraAuth(ctx, app, entry, resp, promptCreds)
		}
		if !resp.Success {
			warnings = append(warnings, deliveryWarning(result.Sink.Name(), resp))
		}
	}
	return warnings
}

// retryJiraAuth re-prompts for credentials while the Jira sink keeps
// reporting it has none: either it never had any (NO_AUTH) or a 403
// just cleared the cache.
func retryJiraAuth(ctx context.Context, app *App, entry domain.TimeEntry, resp backend.Response, promptCreds CredentialPrompt) backend.Response {
	if promptCreds == nil {
		return resp
	}
	failed := false
	for !resp.Success && !app.Jira.Authenticated() {
		username, password, ok := promptCreds(failed)
		if !ok {
			return resp
		}
		app.Jira.SetCredentials(username, password)
		resp = app.Jira.LogWork(ctx, entry)
		failed = true
	}
	return resp
}

func deliveryWarning(sink string, resp backend.Response) string {
	message := resp.Message
	if message == "" {
		message = "delivery failed"
	}
	return fmt.Sprintf("%s: %s", sink, message)
}

// withRetry runs op until it succeeds or the user declines to retry.
// The explicit loop keeps retry depth bounded no matter how often the
// user insists.
func withRetry(prompt func(err error) bool, op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		if prompt == nil || !prompt(err) {
			return err
		}
	}
}
