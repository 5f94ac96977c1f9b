// Package store provides a SQLite-backed journal of processor events.
//
// The journal is append-only: every event a processor emits becomes one row
// in the events table, keyed by an autoincrement id that preserves arrival
// order. It records what happened for later inspection (`cmdq trace`); it is
// never used to rebuild or replay a processor's queue.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Ordering
//
// All reads use ORDER BY id ASC so records come back in the order they were
// appended.
package store
