package scheduler

import (
	"log/slog"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
)

// Span is one prompt-worth of time: [From, To).
type Span struct {
	From time.Time
	To   time.Time
}

// PromptFunc collects the user's resolution for one span. Submission
// and delivery of the resulting entry are the caller's concern; the
// scheduler only needs the outcome.
type PromptFunc func(span Span) domain.PromptOutcome

// Scheduler tracks the last recorded instant and decides when the
// user should be prompted, and for which spans. It never merges
// elapsed intervals: waking after a gap raises one prompt per whole
// interval, in order.
type Scheduler struct {
	lastRecorded time.Time
	interval     time.Duration
	log          *slog.Logger
}

// New creates a scheduler starting from start (normally the
// settings-derived start of the workday) prompting every interval.
func New(start time.Time, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{lastRecorded: start, interval: interval, log: logger}
}

// LastRecorded returns the end of the last resolved span.
func (s *Scheduler) LastRecorded() time.Time {
	return s.lastRecorded
}

// Interval returns the configured prompt interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// SetInterval applies a new interval, e.g. after a settings edit.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval > 0 {
		s.interval = interval
	}
}

// NextDue returns the instant the next prompt becomes due.
func (s *Scheduler) NextDue() time.Time {
	return s.lastRecorded.Add(s.interval)
}

// Due reports whether at least one whole interval has elapsed.
func (s *Scheduler) Due(now time.Time) bool {
	return !now.Before(s.NextDue())
}

// Pending counts whole elapsed intervals awaiting a prompt.
func (s *Scheduler) Pending(now time.Time) int {
	if !s.Due(now) {
		return 0
	}
	return int(now.Sub(s.lastRecorded) / s.interval)
}

// NextSpan is the span the next prompt must cover: exactly one
// interval starting at lastRecorded.
func (s *Scheduler) NextSpan() Span {
	return Span{From: s.lastRecorded, To: s.lastRecorded.Add(s.interval)}
}

// Advance moves lastRecorded forward by one interval. Call it once
// per resolved prompt, submitted or skipped.
func (s *Scheduler) Advance() {
	s.lastRecorded = s.lastRecorded.Add(s.interval)
}

// MarkRecorded sets lastRecorded directly. Used by the manual
// "record now" path, which records up to the current instant
// regardless of interval alignment.
func (s *Scheduler) MarkRecorded(now time.Time) {
	s.lastRecorded = now
}

// CatchUp prompts once per whole elapsed interval, in chronological
// order, advancing after each resolved prompt. A skipped prompt still
// resolves its interval; a cancelled prompt stops catch-up without
// advancing, so the next tick resumes from the first unresolved
// interval. Returns the number of intervals resolved.
func (s *Scheduler) CatchUp(now time.Time, prompt PromptFunc) int {
	resolved := 0
	for s.Due(now) {
		span := s.NextSpan()
		outcome := prompt(span)
		s.log.Debug("catch-up prompt resolved",
			"from", span.From, "to", span.To, "outcome", outcome.String())
		if outcome == domain.OutcomeCancelled {
			break
		}
		s.Advance()
		resolved++
	}
	return resolved
}

// RecordNow prompts immediately for [lastRecorded, now) regardless of
// interval alignment and, unless the prompt was cancelled, sets
// lastRecorded to now.
func (s *Scheduler) RecordNow(now time.Time, prompt PromptFunc) domain.PromptOutcome {
	span := Span{From: s.lastRecorded, To: now}
	outcome := prompt(span)
	if outcome != domain.OutcomeCancelled {
		s.lastRecorded = now
	}
	s.log.Debug("manual record resolved",
		"from", span.From, "to", span.To, "outcome", outcome.String())
	return outcome
}
