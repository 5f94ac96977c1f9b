package processor

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/cmdq/internal/command"
	"github.com/roach88/cmdq/internal/eventlog"
)

// DefaultPriority is the priority used when Submit is given none.
const DefaultPriority = 50

// tracerName identifies the processor's spans.
const tracerName = "github.com/roach88/cmdq/internal/processor"

type options struct {
	sink   eventlog.Sink
	tracer trace.Tracer
}

func defaultOptions() options {
	return options{
		sink:   eventlog.NewSlogSink(nil),
		tracer: otel.Tracer(tracerName),
	}
}

// Option configures a Processor.
type Option func(*options)

// WithSink sets where lifecycle events go.
// Default: an eventlog.SlogSink over slog.Default().
func WithSink(s eventlog.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithLogger is shorthand for WithSink(eventlog.NewSlogSink(logger)).
func WithLogger(logger *slog.Logger) Option {
	return WithSink(eventlog.NewSlogSink(logger))
}

// WithTracer sets the tracer used for dispatch spans.
// Default: the tracer of the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

type submitOptions struct {
	priority int
	tags     command.Tags
}

// SubmitOption configures a single submission.
type SubmitOption func(*submitOptions)

// WithPriority sets the priority of a submission. Lower runs first.
//
// Priorities below zero are accepted but run ahead of a pending Halt.
func WithPriority(p int) SubmitOption {
	return func(o *submitOptions) {
		o.priority = p
	}
}

// WithTags attaches labels to a submission. Tags never affect ordering.
func WithTags(labels ...string) SubmitOption {
	return func(o *submitOptions) {
		o.tags = command.NewTags(labels...)
	}
}
