package backend

import (
	"context"
	"log/slog"

	"github.com/jmerrill/punchclock/internal/domain"
)

// Disposition classifies a sink's attempt at recording an entry.
type Disposition int

const (
	// DispositionSuccess means the entry was durably recorded.
	DispositionSuccess Disposition = iota
	// DispositionNoAuth means the sink has no credential and made no
	// attempt; the caller may supply one and retry.
	DispositionNoAuth
	// DispositionFailure means the attempt was made and failed.
	DispositionFailure
)

func (d Disposition) String() string {
	switch d {
	case DispositionSuccess:
		return "success"
	case DispositionNoAuth:
		return "no_auth"
	case DispositionFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Response is the per-attempt result a sink returns. Responses are
// never persisted.
type Response struct {
	Success     bool
	Message     string
	Disposition Disposition
}

// Sink is a destination that durably records a completed time entry.
type Sink interface {
	// Name identifies the sink in messages and logs.
	Name() string
	// LogWork records the entry. It never panics and reports all
	// failure through the Response.
	LogWork(ctx context.Context, entry domain.TimeEntry) Response
}

// Result pairs a sink with its response for one delivery.
type Result struct {
	Sink     Sink
	Response Response
}

// Fanout delivers each submitted entry to an explicit ordered list of
// enabled sinks. Sinks run sequentially; a failure from one never
// stops delivery to the next, and the fan-out itself does not retry.
type Fanout struct {
	sinks []Sink
	log   *slog.Logger
}

// NewFanout creates a fan-out over the given sinks, in order.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fanout{sinks: sinks, log: logger}
}

// Sinks returns the configured sinks in delivery order.
func (f *Fanout) Sinks() []Sink {
	return f.sinks
}

// Deliver sends the entry to every sink and collects the responses in
// delivery order.
func (f *Fanout) Deliver(ctx context.Context, entry domain.TimeEntry) []Result {
	results := make([]Result, 0, len(f.sinks))
	for _, sink := range f.sinks {
		resp := sink.LogWork(ctx, entry)
		if !resp.Success {
			f.log.Warn("time entry delivery failed",
				"sink", sink.Name(),
				"disposition", resp.Disposition.String(),
				"message", resp.Message)
		} else {
			f.log.Debug("time entry delivered", "sink", sink.Name(), "entry", entry.ID)
		}
		results = append(results, Result{Sink: sink, Response: resp})
	}
	return results
}
