package kernel

import "errors"

// ErrTaskFinished is returned by Interrupt when the target task has already
// completed.
var ErrTaskFinished = errors.New("kernel: task has already finished")

// ErrTaskNotPending is returned by Interrupt when the target task is not
// currently suspended on anything interruptible.
var ErrTaskNotPending = errors.New("kernel: task is not currently pending")

// Interrupted is the error value a task observes from Wait/Timeout/AllOf
// when another task interrupts it while it is pending (spec.md §4.1
// "interrupt(task, cause)").
type Interrupted struct {
	Cause interface{}
}

func (i *Interrupted) Error() string { return "kernel: interrupted" }

// Task is a suspendable unit of work backed by its own goroutine. Its body
// runs to completion exactly as fast as the kernel hands it the baton; it
// never runs concurrently with any other task or with the kernel's own run
// loop.
type Task struct {
	Name string
	Done bool
	Err  error

	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg

	current       *Event
	currentWaiter *waiterEntry
}

type resumeMsg struct {
	value interface{}
	err   error
}

type yieldKind int

const (
	yieldWait yieldKind = iota
	yieldDone
)

type yieldMsg struct {
	kind yieldKind
	err  error
}

// Process is the handle a running task body uses to suspend itself.
type Process struct {
	task   *Task
	kernel *Kernel
}

// Now returns the kernel's current simulated time.
func (p *Process) Now() int64 { return p.kernel.Now() }

// Self returns the Task backing this process body.
func (p *Process) Self() *Task { return p.task }

// Timeout suspends the calling task for dt seconds (spec.md §4.1). It
// returns an *Interrupted error if another task interrupts this one before
// the timeout elapses.
func (p *Process) Timeout(dt int64) error {
	_, err := p.Wait(p.kernel.Timeout(dt))
	return err
}

// Wait suspends the calling task until e fires, returning e's value and
// error (an *Interrupted error if interrupted first).
func (p *Process) Wait(e *Event) (interface{}, error) {
	t := p.task
	we := e.AddWaiter(func(value interface{}, err error) {
		p.kernel.resumeTask(t, value, err)
	})
	t.current = e
	t.currentWaiter = we
	t.yieldCh <- yieldMsg{kind: yieldWait}
	rm := <-t.resumeCh
	t.current = nil
	t.currentWaiter = nil
	return rm.value, rm.err
}

// AllOf suspends the calling task until every event in es has fired
// (spec.md §4.1 "all_of(es)"). If any constituent event fails, the join
// fails with that error without waiting for the rest (spec.md §4.1
// "cancellation of any constituent cancels the join").
func (p *Process) AllOf(es ...*Event) error {
	if len(es) == 0 {
		return nil
	}
	join := p.kernel.newEvent()
	remaining := len(es)
	for _, e := range es {
		e.AddWaiter(func(value interface{}, err error) {
			remaining--
			if err != nil {
				if !join.fired {
					join.Fail(err)
				}
				return
			}
			if remaining == 0 && !join.fired {
				join.Succeed(nil)
			}
		})
	}
	_, err := p.Wait(join)
	return err
}

// Interrupt interrupts other, which must currently be suspended via Wait,
// Timeout or AllOf. other observes an *Interrupted error carrying cause from
// whichever suspension point it was at (spec.md §4.1, §5).
func (p *Process) Interrupt(other *Task, cause interface{}) error {
	return p.kernel.Interrupt(other, cause)
}

// Interrupt is the kernel-level form of Process.Interrupt, usable from
// outside any task body (e.g. a plain Schedule callback acting as a
// timekeeper, spec.md §4.5 "a companion timekeeper task that, at deadline,
// interrupts the guarded task").
func (k *Kernel) Interrupt(t *Task, cause interface{}) error {
	if t.Done {
		return ErrTaskFinished
	}
	if t.current == nil {
		return ErrTaskNotPending
	}
	t.currentWaiter.cancelled = true
	t.current = nil
	t.currentWaiter = nil
	k.resumeTask(t, nil, &Interrupted{Cause: cause})
	return nil
}

// Process schedules fn to start immediately (at the current simulated
// time) as a new task (spec.md §4.1 "process(coroutine) → task").
func (k *Kernel) Process(name string, fn func(p *Process) error) *Task {
	t := &Task{
		Name:     name,
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan yieldMsg),
	}
	go func() {
		<-t.resumeCh
		proc := &Process{task: t, kernel: k}
		err := fn(proc)
		t.yieldCh <- yieldMsg{kind: yieldDone, err: err}
	}()
	k.push(0, func() {
		k.resumeTask(t, nil, nil)
	})
	return t
}

// resumeTask hands the baton to t and blocks until t next suspends or
// finishes.
func (k *Kernel) resumeTask(t *Task, value interface{}, err error) {
	t.resumeCh <- resumeMsg{value: value, err: err}
	ym := <-t.yieldCh
	if ym.kind == yieldDone {
		t.Done = true
		t.Err = ym.err
	}
}
