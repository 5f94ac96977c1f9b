// Package eventlog is the logging boundary of a processor.
//
// A processor reports what it does as Events with a fixed vocabulary of
// Kinds. Where the events end up (slog, an in-memory recorder, the SQLite
// journal) is the Sink's business; emitting is fire-and-forget and a Sink
// must never block the processor for long or report failure back to it.
package eventlog

import (
	"sync"

	"github.com/roach88/cmdq/internal/command"
)

// Kind identifies a point in the processor lifecycle.
type Kind string

const (
	KindSubmit        Kind = "submit"
	KindStart         Kind = "start"
	KindJoinBegin     Kind = "join.begin"
	KindJoinEnd       Kind = "join.end"
	KindHaltBegin     Kind = "halt.begin"
	KindHaltEnd       Kind = "halt.end"
	KindDispatchBegin Kind = "dispatch.begin"
	KindDispatchEnd   Kind = "dispatch.end"
	KindHandlerError  Kind = "handler.error"
	KindControl       Kind = "control"
)

// Kinds lists the full vocabulary in lifecycle order.
var Kinds = []Kind{
	KindSubmit,
	KindStart,
	KindJoinBegin,
	KindJoinEnd,
	KindHaltBegin,
	KindHaltEnd,
	KindDispatchBegin,
	KindDispatchEnd,
	KindHandlerError,
	KindControl,
}

// Valid reports whether k is part of the vocabulary.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Event is a single structured log record.
type Event struct {
	Kind      Kind
	Processor string

	// Handle is set for submit, dispatch, handler.error and control events.
	Handle *command.Handle

	// Depth is the number of entries still queued (dispatch.end, join.begin).
	Depth int

	// Err is the handler failure for handler.error, or a warning attached
	// to an otherwise successful event.
	Err error
}

// Sink receives processor events.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type multi []Sink

// Multi fans events out to every sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements Sink.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
