package backend

import (
	"context"
	"log/slog"

	"github.com/jmerrill/punchclock/internal/domain"
	"github.com/jmerrill/punchclock/internal/repository"
)

// FileSink appends entries to the per-day JSON log. I/O errors are
// logged and reported as FAILURE; there is no retry at this layer.
type FileSink struct {
	entries repository.EntryLogRepo
	log     *slog.Logger
}

// NewFileSink creates a sink writing through the given entry log repo.
func NewFileSink(entries repository.EntryLogRepo, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileSink{entries: entries, log: logger}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) LogWork(_ context.Context, entry domain.TimeEntry) Response {
	if err := s.entries.Append(entry); err != nil {
		s.log.Error("appending time entry", "error", err)
		return Response{
			Success:     false,
			Message:     err.Error(),
			Disposition: DispositionFailure,
		}
	}
	return Response{Success: true, Disposition: DispositionSuccess}
}
