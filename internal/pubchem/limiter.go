package pubchem

import (
	"context"
	"sync"
	"time"
)

// limiter is the client's shared request gate: grants are handed out in
// strict submission order, spaced at least one interval apart. Every lookup
// of every row goes through the same limiter instance, so concurrent row
// edits serialize at the network boundary while staying logically
// independent requests. There are no priorities and no rollback; a grant is
// just permission to start the next fetch.
//
// The original self-rescheduling timer loop is re-expressed as a FIFO of
// waiter channels drained by a single pending time.AfterFunc.
type limiter struct {
	interval time.Duration

	mu      sync.Mutex
	queue   []chan struct{}
	last    time.Time
	pending bool // a timer is scheduled to drain the queue
	now     func() time.Time
	after   func(time.Duration, func()) // test seam, defaults to time.AfterFunc
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{
		interval: interval,
		now:      time.Now,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Acquire blocks until this caller reaches the head of the queue and the
// interval since the previous grant has elapsed, or until ctx is done.
func (l *limiter) Acquire(ctx context.Context) error {
	ch := make(chan struct{})

	l.mu.Lock()
	l.queue = append(l.queue, ch)
	l.drainLocked()
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		l.abandon(ch)
		return ctx.Err()
	}
}

// drainLocked grants the head waiter if the interval has elapsed, otherwise
// schedules a timer for the remainder. Caller holds l.mu.
func (l *limiter) drainLocked() {
	if l.pending || len(l.queue) == 0 {
		return
	}
	wait := l.interval - l.now().Sub(l.last)
	if wait <= 0 {
		head := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.last = l.now()
		close(head)
		if len(l.queue) > 0 {
			l.scheduleLocked(l.interval)
		}
		return
	}
	l.scheduleLocked(wait)
}

func (l *limiter) scheduleLocked(d time.Duration) {
	l.pending = true
	l.after(d, func() {
		l.mu.Lock()
		l.pending = false
		l.drainLocked()
		l.mu.Unlock()
	})
}

// abandon removes a cancelled waiter from the queue. If the grant already
// happened the slot is simply spent; the caller is aborting anyway.
func (l *limiter) abandon(ch chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.queue {
		if c == ch {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return
		}
	}
}

// Len returns the number of queued waiters. Used for tests and diagnostics.
func (l *limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
