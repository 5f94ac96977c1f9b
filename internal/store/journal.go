package store

import (
	"context"
	"log/slog"

	"github.com/roach88/cmdq/internal/eventlog"
)

// Journal adapts a Store to eventlog.Sink.
//
// Emit is fire-and-forget: a failed write is logged and dropped, never
// reported back to the processor.
type Journal struct {
	store  *Store
	logger *slog.Logger
}

// NewJournal creates a sink writing to s. A nil logger means slog.Default().
func NewJournal(s *Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: s, logger: logger}
}

// Emit implements eventlog.Sink.
func (j *Journal) Emit(ev eventlog.Event) {
	if _, err := j.store.Append(context.Background(), RecordFromEvent(ev)); err != nil {
		j.logger.Error("journal write failed",
			"event", string(ev.Kind),
			"processor", ev.Processor,
			"error", err,
		)
	}
}

// RecordFromEvent flattens an event into a journal record.
func RecordFromEvent(ev eventlog.Event) Record {
	r := Record{
		Kind:      string(ev.Kind),
		Processor: ev.Processor,
		Depth:     ev.Depth,
	}
	if h := ev.Handle; h != nil {
		r.Command = h.Name
		r.HandleID = h.ID
		r.Priority = h.Priority
		r.Seq = h.Seq
		r.Tags = []string(h.Tags)
	}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	return r
}
