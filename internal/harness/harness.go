package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/cmdq/internal/command"
	"github.com/roach88/cmdq/internal/eventlog"
	"github.com/roach88/cmdq/internal/processor"
	"github.com/roach88/cmdq/internal/testutil"
)

// Default timings for a run.
const (
	DefaultJoinTimeout = 5 * time.Second
	DefaultBlockWindow = 50 * time.Millisecond
)

// Options configures a scenario run.
type Options struct {
	// Name is used for scenarios that do not name their processor.
	Name string

	// Sinks receive every processor event in addition to the harness's own
	// recorder (e.g. a journal or a logger).
	Sinks []eventlog.Sink

	// ProcessorOptions are passed to the processor as is.
	ProcessorOptions []processor.Option

	// JoinTimeout bounds a join that is expected to return.
	JoinTimeout time.Duration

	// BlockWindow is how long a join marked blocks must stay blocked.
	BlockWindow time.Duration

	// Logger receives harness diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithName sets the default processor name.
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithSink adds an event sink.
func WithSink(s eventlog.Sink) Option {
	return func(o *Options) { o.Sinks = append(o.Sinks, s) }
}

// WithProcessorOptions adds processor options.
func WithProcessorOptions(opts ...processor.Option) Option {
	return func(o *Options) { o.ProcessorOptions = append(o.ProcessorOptions, opts...) }
}

// WithJoinTimeout sets the join timeout.
func WithJoinTimeout(d time.Duration) Option {
	return func(o *Options) { o.JoinTimeout = d }
}

// WithBlockWindow sets the window a blocking join must stay blocked.
func WithBlockWindow(d time.Duration) Option {
	return func(o *Options) { o.BlockWindow = d }
}

// WithLogger sets the harness logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// harness holds the state of a single run.
type harness struct {
	opts   Options
	proc   *processor.Processor[*testutil.Log]
	log    *testutil.Log
	rec    *eventlog.Recorder
	logger *slog.Logger
	result  *Result
}

// Run executes a scenario against a fresh processor and returns the result.
//
// Execution flow:
//  1. Create a paused processor over a fresh log
//  2. Apply the steps in order
//  3. Halt the processor if the scenario did not
//  4. Collect the trace and check expectations
//
// Run returns an error only for scenarios that cannot be executed; failed
// expectations are reported in Result.Errors.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	o := Options{
		Name:        processor.DefaultName,
		JoinTimeout: DefaultJoinTimeout,
		BlockWindow: DefaultBlockWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	name := s.Processor
	if name == "" {
		name = o.Name
	}
	if name == "" {
		name = processor.DefaultName
	}

	rec := eventlog.NewRecorder()
	sinks := append([]eventlog.Sink{rec}, o.Sinks...)
	procOpts := append([]processor.Option{processor.WithSink(eventlog.Multi(sinks...))}, o.ProcessorOptions...)

	log := testutil.NewLog()
	h := &harness{
		opts:   o,
		proc:   processor.New(name, log, procOpts...),
		log:    log,
		rec:    rec,
		logger: logger.With("scenario", s.Name, "processor", name),
		result: NewResult(),
	}

	for i, step := range s.Steps {
		h.apply(i, step)
	}

	if !h.proc.Halted() {
		h.proc.Halt()
	}

	h.collect()
	h.check(s.Expect)

	h.logger.Info("scenario finished",
		"pass", h.result.Pass,
		"executed", len(h.result.Executed),
		"pending", h.result.Pending,
	)
	return h.result, nil
}

func (h *harness) apply(i int, step Step) {
	h.logger.Debug("step", "index", i, "op", step.Op, "command", step.Command)

	switch step.Op {
	case OpSubmit:
		var opts []processor.SubmitOption
		if step.Priority != nil {
			opts = append(opts, processor.WithPriority(*step.Priority))
		}
		if len(step.Tags) > 0 {
			opts = append(opts, processor.WithTags(step.Tags...))
		}
		h.proc.Submit(buildCommand(step), opts...)

	case OpStart:
		h.proc.Start()

	case OpPause:
		h.proc.Pause()

	case OpJoin:
		h.join(i, step)

	case OpHalt:
		h.proc.Halt()
	}
}

func (h *harness) join(i int, step Step) {
	window := h.opts.JoinTimeout
	if step.Blocks {
		window = h.opts.BlockWindow
	}

	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()
	err := h.proc.JoinContext(ctx)

	switch {
	case step.Blocks && err == nil:
		h.result.AddError(fmt.Sprintf("step %d: join returned but was expected to block", i))
	case step.Blocks:
		h.logger.Debug("join blocked as expected", "index", i, "window", window)
	case errors.Is(err, context.DeadlineExceeded):
		h.result.AddError(fmt.Sprintf("step %d: join did not return within %s", i, window))
	}
}

// buildCommand turns a submit step into a recording command.
func buildCommand(step Step) command.Command[*testutil.Log] {
	switch {
	case step.Panic != "":
		return testutil.Panic(step.Command, step.Panic)
	case step.Fail != "":
		return testutil.Fail(step.Command, errors.New(step.Fail))
	default:
		return testutil.Record(step.Command)
	}
}

// collect fills the result from the log and the recorded worker events.
func (h *harness) collect() {
	r := h.result
	r.Executed = append(r.Executed, h.log.Names()...)
	r.Pending = h.proc.Len()

	for _, ev := range h.rec.Events() {
		switch ev.Kind {
		case eventlog.KindDispatchBegin, eventlog.KindDispatchEnd, eventlog.KindHandlerError, eventlog.KindControl:
		default:
			continue
		}

		te := TraceEvent{Kind: string(ev.Kind), Depth: ev.Depth}
		if ev.Handle != nil {
			te.Command = ev.Handle.Name
			te.Priority = ev.Handle.Priority
			te.Seq = ev.Handle.Seq
		}
		if ev.Err != nil {
			te.Error = causeOf(ev.Err).Error()
		}
		if ev.Kind == eventlog.KindHandlerError {
			r.Failed = append(r.Failed, te.Command)
		}
		r.Trace = append(r.Trace, te)
	}
}

// causeOf strips the HandlerError wrapper so traces show what the command
// itself reported.
func causeOf(err error) error {
	var he *processor.HandlerError
	if errors.As(err, &he) && he.Err != nil {
		return he.Err
	}
	return err
}

func (h *harness) check(exp *Expect) {
	if exp == nil {
		return
	}
	r := h.result

	if exp.Order != nil && !slices.Equal(exp.Order, r.Executed) {
		r.AddError(fmt.Sprintf("execution order: expected %v, got %v", exp.Order, r.Executed))
	}
	if exp.Failed != nil && !slices.Equal(exp.Failed, r.Failed) {
		r.AddError(fmt.Sprintf("failed commands: expected %v, got %v", exp.Failed, r.Failed))
	}
	if exp.Pending != nil && *exp.Pending != r.Pending {
		r.AddError(fmt.Sprintf("pending entries: expected %d, got %d", *exp.Pending, r.Pending))
	}
}
