package processor

import (
	"errors"
	"fmt"

	"github.com/roach88/cmdq/internal/command"
)

var (
	// ErrHalted is attached to the submit event of a command submitted after
	// Halt. Such commands are queued but never run.
	ErrHalted = errors.New("processor halted: command will never run")

	// ErrNegativePriority is attached to the submit event of a command whose
	// priority is below zero. Such commands run before a pending halt.
	ErrNegativePriority = errors.New("negative priority runs ahead of halt")
)

// HandlerError is a failure raised by a command while it ran.
//
// Handler errors are contained by the worker: they are reported to the sink
// and the worker moves on to the next entry. They are never retried and never
// returned to the submitter.
type HandlerError struct {
	Handle *command.Handle

	// Err is the error returned by the command, or a description of the
	// panic when Panic is set.
	Err error

	// Panic holds the recovered value if the command panicked.
	Panic any
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("command %s panicked: %v", e.Handle, e.Panic)
	}
	return fmt.Sprintf("command %s failed: %v", e.Handle, e.Err)
}

// Unwrap returns the underlying command error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// IsPanic reports whether err is a HandlerError caused by a panic.
// Uses errors.As to handle wrapped errors.
func IsPanic(err error) bool {
	var he *HandlerError
	if errors.As(err, &he) {
		return he.Panic != nil
	}
	return false
}
