// Package testutil provides deterministic commands and shared state for
// processor tests.
package testutil

import (
	"sync"

	"github.com/roach88/cmdq/internal/command"
)

// Log is a shared value that records which commands ran, in order.
//
// Thread-safety: all methods are safe for concurrent use, so tests can read
// the log while the worker is still appending to it.
type Log struct {
	mu    sync.Mutex
	names []string
	seqs  []int64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records one execution.
func (l *Log) Append(h *command.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, h.Name)
	l.seqs = append(l.seqs, h.Seq)
}

// Names returns the recorded command names in execution order.
func (l *Log) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Seqs returns the recorded sequence numbers in execution order.
func (l *Log) Seqs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int64, len(l.seqs))
	copy(out, l.seqs)
	return out
}

// Len returns the number of recorded executions.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.names)
}

// Record returns a command that appends itself to the shared log.
// IDs are sequential so traces are deterministic.
func Record(name string) command.Func[*Log] {
	return Fail(name, nil)
}

// Fail returns a command that appends itself to the shared log and then
// returns err. A nil err makes it succeed.
func Fail(name string, err error) command.Func[*Log] {
	return command.Func[*Log]{
		Name: name,
		IDs:  command.NewSequentialGenerator(name),
		Fn: func(h *command.Handle, l *Log) (any, error) {
			l.Append(h)
			return nil, err
		},
	}
}

// Panic returns a command that appends itself to the shared log and then
// panics with v.
func Panic(name string, v any) command.Func[*Log] {
	return command.Func[*Log]{
		Name: name,
		IDs:  command.NewSequentialGenerator(name),
		Fn: func(h *command.Handle, l *Log) (any, error) {
			l.Append(h)
			panic(v)
		},
	}
}

// Gate is a command that blocks mid-execution until released, for
// observing the processor while a command is in flight.
type Gate struct {
	Name string

	started chan struct{}
	release chan struct{}
	once    sync.Once
}

// NewGate creates a blocking command.
func NewGate(name string) *Gate {
	return &Gate{
		Name:    name,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

// Started is closed once the command has begun running.
func (g *Gate) Started() <-chan struct{} {
	return g.started
}

// Release lets the command finish. Idempotent.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Handle implements command.Command.
func (g *Gate) Handle(m command.Meta) *command.Handle {
	return &command.Handle{Meta: m, Name: g.Name, ID: g.Name}
}

// Run implements command.Command.
func (g *Gate) Run(h *command.Handle, l *Log) (any, error) {
	close(g.started)
	<-g.release
	l.Append(h)
	return nil, nil
}
