// Package command defines the contract between a processor and the units of
// work it executes.
//
// A Command is asked for its Handle once, at submission time, with the Meta
// the processor allocated for it (priority, sequence, tags, owner). The
// processor keeps that handle alongside the queued entry and passes it back
// when it finally runs the command against the shared value.
//
// Commands own no processor state. The processor never runs two commands from
// the same instance concurrently, so a Command does not need to guard against
// concurrent execution of itself.
package command
