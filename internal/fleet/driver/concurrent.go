package driver

import "github.com/nexabus/evsim/internal/kernel"

// runSolo runs fn as a child task of the caller's process and blocks until
// it finishes, propagating its error. Used when a segment has no matching
// charging facility, so only the traction model needs to run.
func runSolo(k *kernel.Kernel, p *kernel.Process, fn func(*kernel.Process) error) error {
	_, err := p.Wait(taskDone(k, fn))
	return err
}

// runJoined runs driveFn and chargeFn as sibling child tasks over the same
// interval and waits for both to finish, implementing spec.md §4.6/§4.5's
// requirement that the traction model and the interface controller both
// observe a driving segment's full duration concurrently. If either fails,
// the join fails with that error without waiting for the other (spec.md
// §4.1 "cancellation of any constituent cancels the join") — the other
// child keeps running to completion in the background since nothing in
// this scope needs its result once the join has failed.
func runJoined(k *kernel.Kernel, p *kernel.Process, driveFn, chargeFn func(*kernel.Process) error) error {
	return p.AllOf(taskDone(k, driveFn), taskDone(k, chargeFn))
}

// taskDone spawns fn as a new kernel task and returns an event that fires
// when it completes, carrying its error — the join primitive p.AllOf needs
// events, not tasks.
func taskDone(k *kernel.Kernel, fn func(*kernel.Process) error) *kernel.Event {
	ev := k.NewEvent()
	k.Process("", func(p *kernel.Process) error {
		if err := fn(p); err != nil {
			ev.Fail(err)
		} else {
			ev.Succeed(nil)
		}
		return nil
	})
	return ev
}
