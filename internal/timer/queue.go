// Package timer implements the process-wide deferred callback queue polled once
// per game tick. Time is simulated: it only moves when Advance is called.
package timer

import (
	"container/heap"
	"time"
)

type entry struct {
	readyAt time.Duration
	seq     uint64
	tick    uint64 // Advance generation that enqueued this entry
	fn      func()
	dead    bool
	index   int
}

// Handle refers to one scheduled callback. The zero value and nil are inert.
type Handle struct {
	e *entry
}

// Cancel marks the callback inert. Safe to call more than once and after firing.
func (h *Handle) Cancel() {
	if h == nil || h.e == nil {
		return
	}
	h.e.dead = true
	h.e.fn = nil
}

// Active reports whether the callback is still waiting to fire.
func (h *Handle) Active() bool {
	return h != nil && h.e != nil && !h.e.dead
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].readyAt != h[j].readyAt {
		return h[i].readyAt < h[j].readyAt
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}

// Queue orders callbacks by ready time, ties broken by enqueue order.
// Accessed only from the game loop goroutine; no locks.
type Queue struct {
	now     time.Duration
	seq     uint64
	tick    uint64
	entries entryHeap
}

func NewQueue() *Queue {
	return &Queue{entries: make(entryHeap, 0, 256)}
}

// Now returns the simulated time elapsed since the queue was created.
func (q *Queue) Now() time.Duration { return q.now }

// Len returns the number of pending entries, including cancelled ones not yet reaped.
func (q *Queue) Len() int { return len(q.entries) }

// Schedule enqueues fn to run once delay has elapsed. Negative delays count as zero.
func (q *Queue) Schedule(delay time.Duration, fn func()) *Handle {
	if delay < 0 {
		delay = 0
	}
	return q.scheduleAt(q.now+delay, fn)
}

// scheduleAt enqueues fn for an absolute simulated time. Past times fire on
// the next Advance.
func (q *Queue) scheduleAt(at time.Duration, fn func()) *Handle {
	q.seq++
	e := &entry{
		readyAt: at,
		seq:     q.seq,
		tick:    q.tick,
		fn:      fn,
	}
	heap.Push(&q.entries, e)
	return &Handle{e: e}
}

// Advance moves simulated time forward by dt and fires every entry whose ready
// time has elapsed, in order. Each entry is removed before its callback runs, so
// a callback may re-schedule itself; anything enqueued during this call waits
// for the next Advance even when its delay is zero.
func (q *Queue) Advance(dt time.Duration) {
	if dt > 0 {
		q.now += dt
	}
	q.tick++
	for len(q.entries) > 0 {
		top := q.entries[0]
		if top.readyAt > q.now || top.tick >= q.tick {
			return
		}
		heap.Pop(&q.entries)
		if top.dead {
			continue
		}
		fn := top.fn
		top.dead = true
		top.fn = nil
		if fn != nil {
			fn()
		}
	}
}

// Ticker is a repeating callback created by Repeat.
type Ticker struct {
	q        *Queue
	interval time.Duration
	fn       func()
	next     *Handle
	stopped  bool
}

// Repeat runs fn after initial and then every interval until the ticker is stopped.
// An interval <= 0 is clamped to one nanosecond so the ticker still advances.
func (q *Queue) Repeat(initial, interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	t := &Ticker{q: q, interval: interval, fn: fn}
	t.next = q.Schedule(initial, t.fire)
	return t
}

func (t *Ticker) fire() {
	if t.stopped {
		return
	}
	// Reschedule from the due time, not from Now, so a tick rate that does not
	// divide the interval does not accumulate drift. A ticker can fire at most
	// once per Advance; when it falls a whole interval behind it runs again on the
	// next Advance and keeps its interval from there.
	next := t.next.e.readyAt + t.interval
	if next < t.q.now {
		next = t.q.now
	}
	// Reschedule before running so fn may Stop the ticker.
	t.next = t.q.scheduleAt(next, t.fire)
	t.fn()
}

// Stop cancels the pending invocation. Safe on nil.
func (t *Ticker) Stop() {
	if t == nil || t.stopped {
		return
	}
	t.stopped = true
	t.next.Cancel()
}

// Running reports whether the ticker will fire again.
func (t *Ticker) Running() bool {
	return t != nil && !t.stopped
}
