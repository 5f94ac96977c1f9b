package processor

import (
	"container/heap"
	"context"
	"sync"
)

// entryHeap implements heap.Interface over entries ordered by Key.Less.
type entryHeap[C any] []*entry[C]

func (h entryHeap[C]) Len() int           { return len(h) }
func (h entryHeap[C]) Less(i, j int) bool { return h[i].key.Less(h[j].key) }
func (h entryHeap[C]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[C]) Push(x any) {
	*h = append(*h, x.(*entry[C]))
}

func (h *entryHeap[C]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	// Nil out the slot so the popped entry's command can be collected.
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// queue is an unbounded, thread-safe priority queue with unfinished-work
// accounting.
//
// Every Put increments the unfinished count and every Done decrements it;
// Join waits for the count to reach zero.
//
// The queue uses a channel for signaling: the worker calls Next, and if the
// queue was empty waits on Wait() and tries again.
type queue[C any] struct {
	mu         sync.Mutex
	items      entryHeap[C]
	unfinished int
	idle       chan struct{} // closed while unfinished == 0
	signal     chan struct{} // signals entry availability (buffered, size 1)
}

func newQueue[C any]() *queue[C] {
	q := &queue[C]{
		items:  make(entryHeap[C], 0, 64),
		idle:   make(chan struct{}),
		signal: make(chan struct{}, 1),
	}
	close(q.idle)
	return q
}

// Put adds an entry. Thread-safe.
func (q *queue[C]) Put(e *entry[C]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished == 0 {
		q.idle = make(chan struct{})
	}
	q.unfinished++
	heap.Push(&q.items, e)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// TryGet removes and returns the lowest entry without blocking.
func (q *queue[C]) TryGet() (*entry[C], bool) {
	e, _ := q.Next(nil)
	return e, e != nil
}

// Next removes and returns the lowest entry if ready reports true.
//
// ready is evaluated under the queue lock, so a state change that happens
// before a Put is always observed by the Next that could return that entry.
// A nil ready always passes. empty reports whether the queue had nothing to
// return, as opposed to ready refusing.
func (q *queue[C]) Next(ready func() bool) (e *entry[C], empty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, true
	}
	if ready != nil && !ready() {
		return nil, false
	}
	return heap.Pop(&q.items).(*entry[C]), false
}

// Wait returns a channel that signals when entries may be available.
// A receive may be spurious; always retry Next.
func (q *queue[C]) Wait() <-chan struct{} {
	return q.signal
}

// Done marks one previously fetched entry as finished.
// Panics if called more times than Put, like sync.WaitGroup.
func (q *queue[C]) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("processor: queue Done called more times than Put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.idle)
	}
}

// Idle returns a channel closed once every entry put so far is done.
func (q *queue[C]) Idle() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.idle
}

// Join blocks until the unfinished count reaches zero.
func (q *queue[C]) Join() {
	<-q.Idle()
}

// JoinContext is Join with cancellation.
func (q *queue[C]) JoinContext(ctx context.Context) error {
	select {
	case <-q.Idle():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of queued entries, not counting one being run.
func (q *queue[C]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished returns the number of entries put but not yet done.
func (q *queue[C]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}
