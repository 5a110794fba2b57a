package domain

// PromptOutcome is how the user resolved a time-entry prompt.
type PromptOutcome int

const (
	// OutcomeSubmitted means the user filled in and submitted an entry.
	OutcomeSubmitted PromptOutcome = iota
	// OutcomeSkipped means the user declined to record the interval;
	// the interval is still considered resolved.
	OutcomeSkipped
	// OutcomeCancelled means the user closed the prompt. The interval
	// is not resolved and catch-up stops.
	OutcomeCancelled
)

func (o PromptOutcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
