package processor

import "sync"

// Gate is a two-state open/closed barrier. A new Gate is closed.
//
// Wait blocks while the gate is closed. Opening releases every waiter;
// closing only affects subsequent calls to Wait.
type Gate struct {
	mu   sync.Mutex
	open bool
	ch   chan struct{} // closed while the gate is open
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open opens the gate. Idempotent.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	close(g.ch)
}

// Close closes the gate. Idempotent.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return
	}
	g.open = false
	g.ch = make(chan struct{})
}

// IsOpen reports the current state.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Wait blocks until the gate is open.
func (g *Gate) Wait() {
	<-g.Ready()
}

// Ready returns a channel that is closed once the gate is open.
// The channel reflects the state at the time of the call.
func (g *Gate) Ready() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch
}
