// Package loop is a cooperative timer queue. A single host goroutine pumps it
// (a bubbletea update, a raylib frame, or a test), so scheduled callbacks never
// run concurrently with each other.
package loop

import (
	"container/heap"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time          { return c.now }
func (c *ManualClock) Set(t time.Time)         { c.now = t }
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Scheduler hands out cancellable one-shot tasks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) *Task
}

type taskState int

const (
	statePending taskState = iota
	stateFired
	stateCancelled
)

type Task struct {
	due   time.Time
	seq   uint64
	fn    func()
	index int
	state taskState
	q     *Queue
}

// Cancel prevents a pending task from running. It reports whether the task
// was still pending; cancelling a nil, fired or cancelled task is a no-op.
func (t *Task) Cancel() bool {
	if t == nil || t.state != statePending {
		return false
	}
	t.state = stateCancelled
	if t.index >= 0 {
		heap.Remove(&t.q.tasks, t.index)
	}
	return true
}

func (t *Task) Pending() bool {
	return t != nil && t.state == statePending
}

func (t *Task) Due() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.due
}

type Queue struct {
	clock Clock
	tasks taskHeap
	seq   uint64
}

func New(clock Clock) *Queue {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Queue{clock: clock}
}

func (q *Queue) Now() time.Time { return q.clock.Now() }

// AfterFunc schedules fn to run once d has elapsed on the queue's clock.
// Negative durations are treated as zero.
func (q *Queue) AfterFunc(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &Task{due: q.clock.Now().Add(d), seq: q.seq, fn: fn, index: -1, q: q}
	heap.Push(&q.tasks, t)
	return t
}

func (q *Queue) Len() int { return len(q.tasks) }

// Next returns the due time of the earliest pending task.
func (q *Queue) Next() (time.Time, bool) {
	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].due, true
}

// RunDue runs the tasks that were pending and due when it was called, in
// (due, scheduling) order. Tasks scheduled by those callbacks wait for the
// next call even if they are already due, so a callback that overruns its own
// interval cannot keep the host inside RunDue. It returns the number of
// callbacks run.
func (q *Queue) RunDue() int {
	now := q.clock.Now()
	last := q.seq
	n := 0
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		if t.due.After(now) || t.seq > last {
			break
		}
		heap.Pop(&q.tasks)
		t.state = stateFired
		n++
		if t.fn != nil {
			t.fn()
		}
	}
	return n
}

// Advance moves a ManualClock forward by d, stopping at each due task so that
// callbacks observe their own due time. With any other clock it only runs
// what is already due.
func (q *Queue) Advance(d time.Duration) int {
	mc, ok := q.clock.(*ManualClock)
	if !ok {
		return q.RunDue()
	}
	target := mc.Now().Add(d)
	n := 0
	for {
		next, ok := q.Next()
		if !ok || next.After(target) {
			break
		}
		if next.After(mc.Now()) {
			mc.Set(next)
		}
		n += q.RunDue()
	}
	mc.Set(target)
	return n + q.RunDue()
}

// Clear cancels everything still pending.
func (q *Queue) Clear() {
	for len(q.tasks) > 0 {
		q.tasks[0].Cancel()
	}
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
