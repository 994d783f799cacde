package viewer

import (
	"context"
	"sync"

	"github.com/roach88/fitsview/internal/render"
)

// item is one entry of the session queue: an event, or a barrier when ev
// is nil. Draw requests carry the caller's context and a reply channel.
type item struct {
	ev    Event
	ctx   context.Context
	reply chan drawResult
	done  chan struct{}
}

type drawResult struct {
	diag render.Diagnostics
	err  error
}

// eventQueue is a thread-safe unbounded FIFO queue.
//
// Read completions arrive from source goroutines while the Run loop
// dequeues. The buffered signal channel lets the loop wait for work and for
// context cancellation in the same select.
type eventQueue struct {
	mu     sync.Mutex
	items  []item
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		items:  make([]item, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds it to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(it item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, it)

	// Non-blocking: the buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front item without blocking.
func (q *eventQueue) TryDequeue() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return item{}, false
	}

	it := q.items[0]
	// Release the slot so byte slices of read completions can be collected.
	q.items[0] = item{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return it, true
}

// Wait returns a channel that signals when items may be available.
// It is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether Close was called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes the waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
