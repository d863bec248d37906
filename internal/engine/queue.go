package engine

import (
	"sync"

	"github.com/stoichtab/stoichtab/internal/grid"
	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeEdit carries one settled set of host-delivered cell writes.
	EventTypeEdit EventType = iota + 1
	// EventTypeRemoveRow carries an explicit row removal.
	EventTypeRemoveRow
	// EventTypeCompletion carries the result of an asynchronous lookup
	// re-entering the propagation path.
	EventTypeCompletion
)

// Event is one unit of work for the engine loop.
type Event struct {
	Type       EventType
	Seq        int64
	Cells      []grid.Cell
	Source     grid.Source
	Row        int
	Completion *Completion
}

// Completion is the outcome of one lookup request. Exactly one of Compound
// and Err is set.
type Completion struct {
	Row      int
	Token    string
	Kind     sheet.Kind
	Query    string
	Compound *pubchem.Compound
	Err      error
}

// eventQueue is a thread-safe FIFO queue for events.
//
// Unbounded: a burst of lookup completions must never block the network
// goroutines delivering them. External producers enqueue while the engine's
// Run loop dequeues; the buffered signal channel coalesces wakeups and
// enables context-aware waiting.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe; returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]

	// Nil out the slot so the Event's pointers are collectable while the
	// backing array lives on.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns the signal channel for select-based waiting. The channel
// closes when the queue closes.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether the queue has been closed.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed and wakes all waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
