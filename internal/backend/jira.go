package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
)

// Jira status codes of interest. NeedsAuth is a local sentinel: no
// credential was present so no request was attempted.
const (
	jiraStatusNeedsAuth  = 901
	jiraStatusFailedAuth = http.StatusForbidden
	jiraStatusSuccess    = http.StatusCreated
)

// JiraSink submits entries to a Jira instance's worklog REST API
// using cached basic-auth credentials.
type JiraSink struct {
	baseURL string
	creds   *CredentialCache
	client  *http.Client
	log     *slog.Logger
}

// NewJiraSink creates a sink targeting the Jira instance at baseURL.
// The credential cache starts empty; the first delivery reports
// NO_AUTH until SetCredentials is called.
func NewJiraSink(baseURL string, logger *slog.Logger) *JiraSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JiraSink{
		baseURL: baseURL,
		creds:   NewCredentialCache(),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

func (s *JiraSink) Name() string { return "jira" }

// SetCredentials caches a basic-auth credential for future requests.
func (s *JiraSink) SetCredentials(username, password string) {
	s.creds.Set(username, password)
}

// Authenticated reports whether a credential is cached.
func (s *JiraSink) Authenticated() bool {
	return s.creds.Present()
}

func (s *JiraSink) issueURL(issue string) string {
	return fmt.Sprintf("%s/rest/api/2/issue/%s", s.baseURL, issue)
}

func (s *JiraSink) worklogURL(issue string) string {
	return s.issueURL(issue) + "/worklog"
}

// worklogBody is the JSON payload for the worklog POST.
type worklogBody struct {
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Comment          string `json:"comment,omitempty"`
}

// jiraResponse is the raw status/message pair before mapping onto a
// backend Response.
type jiraResponse struct {
	status  int
	message string
}

func (r jiraResponse) toResponse() Response {
	return Response{
		Success:     r.status == jiraStatusSuccess,
		Message:     r.message,
		Disposition: dispositionFor(r.status),
	}
}

func dispositionFor(status int) Disposition {
	switch status {
	case jiraStatusNeedsAuth:
		return DispositionNoAuth
	case jiraStatusSuccess:
		return DispositionSuccess
	default:
		return DispositionFailure
	}
}

// LogWork verifies the issue exists, then posts a worklog for the
// entry's duration. 201 is success; 403 clears the cached credential
// so the caller can re-prompt; anything else is a plain failure with
// the observed status.
func (s *JiraSink) LogWork(ctx context.Context, entry domain.TimeEntry) Response {
	if !s.creds.Present() {
		s.log.Debug("jira credentials not cached, skipping request")
		return jiraResponse{
			status:  jiraStatusNeedsAuth,
			message: "Need to reauthenticate with Jira",
		}.toResponse()
	}

	exists, status, err := s.issueExists(ctx, entry.Issue.Number)
	if err != nil {
		return Response{Message: err.Error(), Disposition: DispositionFailure}
	}
	if !exists {
		message := fmt.Sprintf("Jira encountered an unexpected error attempting to access %s with a status code of %d",
			entry.Issue.Number, status)
		if status == http.StatusNotFound {
			message = fmt.Sprintf("Jira was unable to locate issue %s with a status code of %d",
				entry.Issue.Number, status)
		}
		s.log.Warn(message)
		return jiraResponse{status: status, message: message}.toResponse()
	}

	status, err = s.postWorklog(ctx, entry)
	if err != nil {
		return Response{Message: err.Error(), Disposition: DispositionFailure}
	}

	switch status {
	case jiraStatusSuccess:
		return jiraResponse{status: status}.toResponse()
	case jiraStatusFailedAuth:
		s.creds.Clear()
		return jiraResponse{
			status:  status,
			message: "Authentication with Jira failed!",
		}.toResponse()
	default:
		return jiraResponse{
			status:  status,
			message: fmt.Sprintf("Expected status code of %d, got %d", jiraStatusSuccess, status),
		}.toResponse()
	}
}

func (s *JiraSink) issueExists(ctx context.Context, issue string) (bool, int, error) {
	url := s.issueURL(issue)
	s.log.Debug("checking issue exists", "url", url, "authorization", "Basic *******")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, 0, fmt.Errorf("building issue request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, 0, fmt.Errorf("checking issue %s: %w", issue, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, resp.StatusCode, nil
}

func (s *JiraSink) postWorklog(ctx context.Context, entry domain.TimeEntry) (int, error) {
	body := worklogBody{
		TimeSpentSeconds: int(entry.Duration().Seconds()),
		Comment:          entry.Comment,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshalling worklog: %w", err)
	}

	url := s.worklogURL(entry.Issue.Number)
	s.log.Debug("posting worklog",
		"url", url, "seconds", body.TimeSpentSeconds, "authorization", "Basic *******")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("building worklog request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting worklog for %s: %w", entry.Issue.Number, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (s *JiraSink) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", s.creds.Header())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
