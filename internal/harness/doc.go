// Package harness runs scripted scenarios against a real processor.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE) files with the following structure:
//
//	name: priority_order
//	description: "Lower priority values run first"
//	processor: Cmd            # optional, defaults to processor.DefaultName
//	steps:
//	  - op: submit
//	    command: A
//	    priority: 50
//	    tags: [io]
//	  - op: submit
//	    command: B
//	    priority: 10
//	    fail: "disk full"     # B returns this error when run
//	  - op: start
//	  - op: join
//	expect:
//	  order: [B, A]
//	  failed: [B]
//	  pending: 0
//
// # Operations
//
//   - submit: queue a recording command (optionally failing or panicking)
//   - start, pause: open or close the processor's gate
//   - join: wait for the queue to drain; with blocks: true the join is
//     expected NOT to return within the block window
//   - halt: stop the worker
//
// After the last step the harness halts the processor if the scenario did
// not, so every run ends with the worker gone.
//
// # Deterministic Traces
//
// Commands record themselves into a shared log and use sequential handle
// IDs. The worker-side trace (dispatch, handler errors, control entries) is
// deterministic whenever all submissions happen while the processor is
// paused, which makes it suitable for golden file comparison.
package harness
