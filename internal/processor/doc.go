// Package processor implements a single-consumer, priority-ordered command
// execution engine.
//
// ARCHITECTURE:
//
// Single Worker:
// Each Processor owns exactly one worker goroutine, started by New and alive
// until Halt. Commands run strictly one at a time against the shared value,
// so neither the shared value nor the commands need locking on the engine's
// behalf.
//
// Dispatch Flow:
//  1. Submit allocates a sequence number from the Clock, asks the command for
//     its handle and pushes an entry onto the queue.
//  2. The worker waits on the Gate (pause/resume), then blocks popping the
//     lowest entry by (priority, seq).
//  3. Work entries run with error and panic containment; control entries stop
//     the loop.
//  4. Every popped entry is marked done, which is what Join waits for.
//
// ORDERING:
// Lower priority values run first; equal priorities run in submission order.
// The halt entry uses priority 0 and seq 0, so it precedes every queued entry
// with priority >= 0. Entries with a negative priority still run before it.
//
// CALLER CONTRACT:
//   - Join while paused blocks until Start; use JoinContext to bound it.
//   - Entries submitted after Halt are never drained.
//   - Pause never interrupts the command that is already running.
package processor
