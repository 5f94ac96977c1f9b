package command

import (
	"fmt"
)

// Meta is the engine-assigned metadata for a submitted command.
type Meta struct {
	Priority int
	Seq      int64
	Tags     Tags
	Owner    string
}

// Handle is the caller-visible identity of a submitted unit of work.
type Handle struct {
	Meta

	// Name is a human-readable label chosen by the command.
	Name string

	// ID is an opaque unique identifier chosen by the command.
	ID string
}

// String renders the handle for logs.
func (h *Handle) String() string {
	if h == nil {
		return "<nil handle>"
	}
	return fmt.Sprintf("%s[%s#%d p=%d%s]", h.Name, h.Owner, h.Seq, h.Priority, tagSuffix(h.Tags))
}

func tagSuffix(t Tags) string {
	if len(t) == 0 {
		return ""
	}
	return " " + t.String()
}

// Command is a unit of work executed against a shared value of type C.
//
// Handle is called exactly once per submission, synchronously inside
// Processor.Submit. Run is called at most once, on the processor's worker
// goroutine. Any result Run returns is discarded; an error is reported to
// the processor's sink and never retried.
type Command[C any] interface {
	Handle(m Meta) *Handle
	Run(h *Handle, shared C) (any, error)
}

// Func adapts a plain function to the Command interface.
type Func[C any] struct {
	Name string
	Fn   func(h *Handle, shared C) (any, error)

	// IDs generates handle IDs. Nil means UUIDv7.
	IDs IDGenerator
}

// New returns a Func that runs fn and produces no result.
func New[C any](name string, fn func(h *Handle, shared C) error) Func[C] {
	return Func[C]{
		Name: name,
		Fn: func(h *Handle, shared C) (any, error) {
			return nil, fn(h, shared)
		},
	}
}

// Handle implements Command.
func (f Func[C]) Handle(m Meta) *Handle {
	ids := f.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Handle{Meta: m, Name: f.Name, ID: ids.Generate()}
}

// Run implements Command.
func (f Func[C]) Run(h *Handle, shared C) (any, error) {
	if f.Fn == nil {
		return nil, fmt.Errorf("command %q has no function", f.Name)
	}
	return f.Fn(h, shared)
}
