package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/cmdq/internal/command"
	"github.com/roach88/cmdq/internal/eventlog"
)

// Processor executes submitted commands one at a time, in priority order,
// against a shared value of type C.
//
// Thread-safety model:
//   - Submit, Start, Pause, Paused, Join, JoinContext, Halt: safe from any goroutine
//   - Commands: run only on the processor's single worker goroutine
//
// Lifecycle: created paused -> running <-> paused -> halted (terminal).
type Processor[C any] struct {
	name   string
	shared C

	clock *Clock
	queue *queue[C]
	gate  *Gate

	sink   eventlog.Sink
	tracer trace.Tracer

	haltOnce sync.Once
	halted   atomic.Bool
	done     chan struct{} // closed when the worker exits
}

// New creates a paused processor and starts its worker.
//
// The worker lives until Halt. A processor that is never halted keeps its
// goroutine for the life of the program.
func New[C any](name string, shared C, opts ...Option) *Processor[C] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Processor[C]{
		name:   name,
		shared: shared,
		clock:  NewClock(),
		queue:  newQueue[C](),
		gate:   NewGate(),
		sink:   o.sink,
		tracer: o.tracer,
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Name returns the processor's name, used as the owner of its handles.
func (p *Processor[C]) Name() string {
	return p.name
}

// Submit queues cmd and returns its handle immediately.
//
// Submit never blocks on execution, regardless of pause state, and there is
// no way to get the command's result or error back through it.
func (p *Processor[C]) Submit(cmd command.Command[C], opts ...SubmitOption) *command.Handle {
	so := submitOptions{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&so)
	}

	key := Key{Priority: so.priority, Seq: p.clock.Next()}
	meta := command.Meta{Priority: key.Priority, Seq: key.Seq, Tags: so.tags, Owner: p.name}
	h := cmd.Handle(meta)
	if h == nil {
		h = &command.Handle{Meta: meta}
	}

	var warn error
	switch {
	case p.halted.Load():
		warn = ErrHalted
	case key.Priority < 0:
		warn = ErrNegativePriority
	}
	p.emit(eventlog.Event{Kind: eventlog.KindSubmit, Handle: h, Err: warn})

	p.queue.Put(newWorkEntry(key, h, cmd))
	return h
}

// Start opens the gate so the worker may dispatch. Idempotent.
func (p *Processor[C]) Start() {
	p.emit(eventlog.Event{Kind: eventlog.KindStart})
	p.gate.Open()
}

// Pause closes the gate. Idempotent.
//
// The command currently running, if any, runs to completion; Pause only
// prevents the next dispatch.
func (p *Processor[C]) Pause() {
	p.gate.Close()
}

// Paused reports whether the gate is closed.
func (p *Processor[C]) Paused() bool {
	return !p.gate.IsOpen()
}

// Join blocks until every submitted entry has been marked done.
//
// Join never returns while the processor is paused with work outstanding,
// or after Halt if entries were submitted after it. Use JoinContext to bound
// the wait.
func (p *Processor[C]) Join() {
	p.emit(eventlog.Event{Kind: eventlog.KindJoinBegin, Depth: p.queue.Len()})
	p.queue.Join()
	p.emit(eventlog.Event{Kind: eventlog.KindJoinEnd})
}

// JoinContext is Join that gives up when ctx is done.
func (p *Processor[C]) JoinContext(ctx context.Context) error {
	p.emit(eventlog.Event{Kind: eventlog.KindJoinBegin, Depth: p.queue.Len()})
	err := p.queue.JoinContext(ctx)
	p.emit(eventlog.Event{Kind: eventlog.KindJoinEnd, Err: err})
	return err
}

// Halt stops the worker and waits for it to exit.
//
// Halt queues a control entry with priority 0 and seq 0, so it runs after the
// current command and after any queued negative-priority entries, but before
// everything else. A paused processor is opened so the worker can reach it.
//
// Halt is one-shot: later and concurrent calls wait for the same worker exit
// and return. Entries submitted after Halt are never run.
func (p *Processor[C]) Halt() {
	p.haltOnce.Do(func() {
		p.halted.Store(true)
		p.emit(eventlog.Event{Kind: eventlog.KindHaltBegin, Depth: p.queue.Len()})
		p.queue.Put(newHaltEntry[C](p.name))
		p.gate.Open()
		<-p.done
		p.emit(eventlog.Event{Kind: eventlog.KindHaltEnd})
	})
	<-p.done
}

// Halted reports whether Halt has been called.
func (p *Processor[C]) Halted() bool {
	return p.halted.Load()
}

// Done returns a channel closed when the worker has exited.
func (p *Processor[C]) Done() <-chan struct{} {
	return p.done
}

// Len returns the number of queued entries.
func (p *Processor[C]) Len() int {
	return p.queue.Len()
}

// Submitted returns how many commands have been submitted.
func (p *Processor[C]) Submitted() int64 {
	return p.clock.Current()
}

// String describes the processor for logs.
func (p *Processor[C]) String() string {
	return fmt.Sprintf("processor %q (submitted=%d)", p.name, p.clock.Current())
}

func (p *Processor[C]) emit(ev eventlog.Event) {
	ev.Processor = p.name
	p.sink.Emit(ev)
}

// run is the worker loop. It is the only goroutine that dispatches.
//
// The gate is checked again under the queue lock when fetching, so a command
// submitted after Pause returns does not run until Start. When the queue is
// empty the worker waits for a signal and re-checks the gate.
func (p *Processor[C]) run() {
	defer close(p.done)

	for {
		p.gate.Wait()

		e, empty := p.queue.Next(p.gate.IsOpen)
		if e == nil {
			if empty {
				<-p.queue.Wait()
			}
			// Otherwise the gate closed after Wait; go back and block on it.
			continue
		}

		if stop := p.dispatch(e); stop {
			return
		}
	}
}

// dispatch handles one fetched entry and reports whether the worker should
// exit. The entry is marked done on every path.
func (p *Processor[C]) dispatch(e *entry[C]) (stop bool) {
	defer p.queue.Done()

	switch e.kind {
	case payloadControl:
		p.emit(eventlog.Event{Kind: eventlog.KindControl, Handle: e.handle})
		return e.ctl == controlHalt
	case payloadWork:
		p.execute(e)
	}
	return false
}

// execute runs a work entry inside a span, reporting any failure to the sink.
func (p *Processor[C]) execute(e *entry[C]) {
	h := e.handle
	_, span := p.tracer.Start(context.Background(), "cmdq.dispatch",
		trace.WithAttributes(
			attribute.String("cmdq.processor", p.name),
			attribute.String("cmdq.command", h.Name),
			attribute.Int("cmdq.priority", e.key.Priority),
			attribute.Int64("cmdq.seq", e.key.Seq),
			attribute.StringSlice("cmdq.tags", h.Tags),
		),
	)
	defer span.End()

	p.emit(eventlog.Event{Kind: eventlog.KindDispatchBegin, Handle: h})

	if err := p.invoke(e); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.emit(eventlog.Event{Kind: eventlog.KindHandlerError, Handle: h, Err: err})
	}

	p.emit(eventlog.Event{Kind: eventlog.KindDispatchEnd, Handle: h, Depth: p.queue.Len()})
}

// invoke calls the command, converting a returned error or a panic into a
// HandlerError.
func (p *Processor[C]) invoke(e *entry[C]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Handle: e.handle, Err: fmt.Errorf("panic: %v", r), Panic: r}
		}
	}()

	if _, runErr := e.cmd.Run(e.handle, p.shared); runErr != nil {
		return &HandlerError{Handle: e.handle, Err: runErr}
	}
	return nil
}
