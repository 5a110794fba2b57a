package scheduler

import (
	"testing"
	"time"

	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workdayStart = time.Date(2026, 3, 4, 8, 0, 0, 0, time.Local)

func TestNotDueBeforeOneWholeInterval(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	assert.False(t, s.Due(workdayStart.Add(59*time.Minute)))
	assert.True(t, s.Due(workdayStart.Add(time.Hour)))
	assert.Equal(t, workdayStart.Add(time.Hour), s.NextDue())
}

func TestCatchUpPromptsOncePerElapsedInterval(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(2*time.Hour + 30*time.Minute) // 10:30

	var spans []Span
	resolved := s.CatchUp(now, func(span Span) domain.PromptOutcome {
		spans = append(spans, span)
		return domain.OutcomeSubmitted
	})

	// 08:00–09:00 then 09:00–10:00; the partial 10:00–10:30 waits.
	require.Equal(t, 2, resolved)
	require.Len(t, spans, 2)
	assert.Equal(t, workdayStart, spans[0].From)
	assert.Equal(t, workdayStart.Add(time.Hour), spans[0].To)
	assert.Equal(t, workdayStart.Add(time.Hour), spans[1].From)
	assert.Equal(t, workdayStart.Add(2*time.Hour), spans[1].To)

	assert.Equal(t, workdayStart.Add(2*time.Hour), s.LastRecorded())
	assert.False(t, s.Due(now), "idle until 11:00")
}

func TestCatchUpSpansAreExactlyOneIntervalEach(t *testing.T) {
	interval := 30 * time.Minute
	s := New(workdayStart, interval, nil)
	now := workdayStart.Add(5 * interval)

	s.CatchUp(now, func(span Span) domain.PromptOutcome {
		assert.Equal(t, interval, span.To.Sub(span.From))
		return domain.OutcomeSkipped
	})
	assert.Equal(t, now, s.LastRecorded())
}

func TestCatchUpSkipContinues(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(3 * time.Hour)

	outcomes := []domain.PromptOutcome{
		domain.OutcomeSubmitted, domain.OutcomeSkipped, domain.OutcomeSubmitted,
	}
	i := 0
	resolved := s.CatchUp(now, func(Span) domain.PromptOutcome {
		o := outcomes[i]
		i++
		return o
	})

	assert.Equal(t, 3, resolved, "a skip still resolves its interval")
	assert.Equal(t, now, s.LastRecorded())
}

func TestCatchUpCancelStopsWithoutAdvancing(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(4 * time.Hour)

	calls := 0
	resolved := s.CatchUp(now, func(Span) domain.PromptOutcome {
		calls++
		if calls == 3 {
			return domain.OutcomeCancelled
		}
		return domain.OutcomeSubmitted
	})

	// Two of four intervals resolved; cancellation stops the session.
	assert.Equal(t, 2, resolved)
	assert.Equal(t, 3, calls)
	assert.Equal(t, workdayStart.Add(2*time.Hour), s.LastRecorded())

	// The next tick resumes from the third interval exactly.
	var resumedFrom time.Time
	s.CatchUp(now, func(span Span) domain.PromptOutcome {
		if resumedFrom.IsZero() {
			resumedFrom = span.From
		}
		return domain.OutcomeSubmitted
	})
	assert.Equal(t, workdayStart.Add(2*time.Hour), resumedFrom)
	assert.Equal(t, now, s.LastRecorded())
}

func TestCatchUpWhenNothingElapsed(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)

	resolved := s.CatchUp(workdayStart.Add(10*time.Minute), func(Span) domain.PromptOutcome {
		t.Fatal("prompt must not fire before an interval elapses")
		return domain.OutcomeCancelled
	})
	assert.Equal(t, 0, resolved)
	assert.Equal(t, workdayStart, s.LastRecorded())
}

func TestPendingCountsWholeIntervals(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)

	assert.Equal(t, 0, s.Pending(workdayStart.Add(30*time.Minute)))
	assert.Equal(t, 1, s.Pending(workdayStart.Add(time.Hour)))
	assert.Equal(t, 2, s.Pending(workdayStart.Add(2*time.Hour+59*time.Minute)))
}

func TestRecordNowIgnoresIntervalAlignment(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(42 * time.Minute)

	var got Span
	outcome := s.RecordNow(now, func(span Span) domain.PromptOutcome {
		got = span
		return domain.OutcomeSubmitted
	})

	assert.Equal(t, domain.OutcomeSubmitted, outcome)
	assert.Equal(t, workdayStart, got.From)
	assert.Equal(t, now, got.To)
	assert.Equal(t, now, s.LastRecorded())
}

func TestRecordNowCancelledLeavesStateAlone(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)

	s.RecordNow(workdayStart.Add(20*time.Minute), func(Span) domain.PromptOutcome {
		return domain.OutcomeCancelled
	})
	assert.Equal(t, workdayStart, s.LastRecorded())
}

func TestRecordNowSkippedStillAdvances(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(20 * time.Minute)

	s.RecordNow(now, func(Span) domain.PromptOutcome {
		return domain.OutcomeSkipped
	})
	assert.Equal(t, now, s.LastRecorded())
}

func TestZeroIntervalFallsBackToOneHour(t *testing.T) {
	s := New(workdayStart, 0, nil)
	assert.Equal(t, time.Hour, s.Interval())

	s.SetInterval(-time.Minute)
	assert.Equal(t, time.Hour, s.Interval(), "invalid intervals are rejected")

	s.SetInterval(15 * time.Minute)
	assert.Equal(t, 15*time.Minute, s.Interval())
}

// End-to-end scenario from the settings defaults: interval 1h, day
// starts 08:00, first wake at 10:30.
func TestMorningCatchUpScenario(t *testing.T) {
	s := New(workdayStart, time.Hour, nil)
	now := workdayStart.Add(2*time.Hour + 30*time.Minute)

	var entries []domain.TimeEntry
	resolved := s.CatchUp(now, func(span Span) domain.PromptOutcome {
		entries = append(entries, domain.TimeEntry{FromTime: span.From, ToTime: span.To})
		return domain.OutcomeSubmitted
	})

	require.Equal(t, 2, resolved)
	assert.Equal(t, workdayStart.Add(2*time.Hour), s.LastRecorded())
	assert.Equal(t, workdayStart.Add(3*time.Hour), s.NextDue())
	for _, e := range entries {
		assert.Equal(t, time.Hour, e.Duration())
	}
}
