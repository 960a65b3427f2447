// Package kernel implements the cooperative discrete-event scheduler
// (spec.md §4.1): a single-threaded virtual clock, a min-heap event queue
// ordered by (time, insertion sequence), goroutine-backed tasks that
// suspend at explicit yield points, and capacity-bounded resources with a
// FIFO wait queue.
//
// Exactly one task's body is ever executing at a time. The kernel hands a
// task the baton by sending on its resume channel and immediately blocking
// on that task's yield channel; the task runs until its next suspension
// point (Timeout, Wait, AllOf, or return) and hands the baton back. No two
// task goroutines are therefore ever concurrently active, which is what
// makes same-time firings deterministically FIFO (spec.md §4.1, §5, §9).
package kernel

import "container/heap"

// Kernel owns the virtual clock and the event queue.
type Kernel struct {
	now int64
	seq uint64
	q   eventQueue
}

// New returns an empty Kernel at simulated time zero.
func New() *Kernel {
	return &Kernel{}
}

// Now returns the kernel's current simulated time, in seconds.
func (k *Kernel) Now() int64 { return k.now }

// Run pops the earliest due firing and executes it, repeating until the
// queue empties or the clock would advance past until (spec.md §4.1
// "run(until=None)"). A nil until drains the queue completely.
func (k *Kernel) Run(until *int64) {
	for k.q.Len() > 0 {
		next := k.q[0]
		if until != nil && next.time > *until {
			break
		}
		entry := heap.Pop(&k.q).(*heapEntry)
		k.now = entry.time
		entry.action()
	}
	if until != nil && k.now < *until {
		k.now = *until
	}
}

// Schedule runs fn once, dt seconds from now, as a plain callback with no
// associated task — used by components (storage, timekeepers) that need a
// future firing without suspending a coroutine.
func (k *Kernel) Schedule(dt int64, fn func()) {
	k.push(dt, fn)
}

func (k *Kernel) push(dt int64, action func()) {
	k.seq++
	heap.Push(&k.q, &heapEntry{time: k.now + dt, seq: k.seq, action: action})
}

type heapEntry struct {
	time   int64
	seq    uint64
	action func()
}

// eventQueue is a min-heap ordered by (time, seq); equal times are broken by
// insertion sequence, giving the deterministic FIFO-at-equal-time guarantee
// spec.md §4.1 and §9 require.
type eventQueue []*heapEntry

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) {
	*q = append(*q, x.(*heapEntry))
}
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
