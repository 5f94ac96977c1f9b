package eventlog

import (
	"context"
	"log/slog"
)

// SlogSink writes events to a structured logger.
//
// Levels: handler errors log at Error, events carrying a warning at Warn,
// dispatch events at Debug and everything else at Info.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink creates a sink over logger. A nil logger means slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{Logger: logger}
}

// Emit implements Sink.
func (s *SlogSink) Emit(ev Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("event", string(ev.Kind)),
		slog.String("processor", ev.Processor),
	}
	if h := ev.Handle; h != nil {
		attrs = append(attrs,
			slog.String("command", h.Name),
			slog.Int64("seq", h.Seq),
			slog.Int("priority", h.Priority),
		)
		if h.ID != "" {
			attrs = append(attrs, slog.String("id", h.ID))
		}
		if len(h.Tags) > 0 {
			attrs = append(attrs, slog.Any("tags", []string(h.Tags)))
		}
	}
	switch ev.Kind {
	case KindDispatchEnd, KindJoinBegin:
		attrs = append(attrs, slog.Int("depth", ev.Depth))
	}
	if ev.Err != nil {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
	}

	logger.LogAttrs(context.Background(), levelFor(ev), message(ev.Kind), attrs...)
}

func levelFor(ev Event) slog.Level {
	switch {
	case ev.Kind == KindHandlerError:
		return slog.LevelError
	case ev.Err != nil:
		return slog.LevelWarn
	case ev.Kind == KindDispatchBegin, ev.Kind == KindDispatchEnd, ev.Kind == KindSubmit:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func message(k Kind) string {
	switch k {
	case KindSubmit:
		return "command submitted"
	case KindStart:
		return "processor started"
	case KindJoinBegin:
		return "join waiting"
	case KindJoinEnd:
		return "join drained"
	case KindHaltBegin:
		return "processor halting"
	case KindHaltEnd:
		return "processor halted"
	case KindDispatchBegin:
		return "dispatching command"
	case KindDispatchEnd:
		return "command done"
	case KindHandlerError:
		return "command failed"
	case KindControl:
		return "control entry observed"
	default:
		return string(k)
	}
}
