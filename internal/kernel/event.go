package kernel

// Event is a one-shot signal. It fires exactly once, carrying a value and/or
// an error, and notifies every task or callback waiting on it in the order
// they began waiting (spec.md §4.1's determinism rule).
type Event struct {
	kernel  *Kernel
	fired   bool
	value   interface{}
	err     error
	waiters []*waiterEntry
}

type waiterEntry struct {
	fn        func(value interface{}, err error)
	cancelled bool
}

func (k *Kernel) newEvent() *Event {
	return &Event{kernel: k}
}

// NewEvent creates an event with no scheduled firing; some caller is
// expected to eventually call Succeed or Fail on it (e.g. a Resource grant,
// or an externally observed condition such as fully_charged).
func (k *Kernel) NewEvent() *Event { return k.newEvent() }

// Fired reports whether the event has already fired.
func (e *Event) Fired() bool { return e.fired }

// Value returns the value the event fired with (meaningless before Fired()).
func (e *Event) Value() interface{} { return e.value }

// AddWaiter registers fn to run when e fires, unless cancelled first via the
// returned entry. If e has already fired, fn is scheduled to run on the next
// tick (preserving the invariant that firings only ever happen from within
// the kernel's run loop).
func (e *Event) AddWaiter(fn func(value interface{}, err error)) *waiterEntry {
	we := &waiterEntry{fn: fn}
	if e.fired {
		value, err := e.value, e.err
		e.kernel.push(0, func() {
			if !we.cancelled {
				fn(value, err)
			}
		})
		return we
	}
	e.waiters = append(e.waiters, we)
	return we
}

// Succeed schedules e to fire successfully with value, at the current
// simulated time (it still passes through the event queue so that
// same-instant firings interleave in FIFO order with everything else
// already queued).
func (e *Event) Succeed(value interface{}) {
	e.schedule(value, nil)
}

// Fail schedules e to fire with err.
func (e *Event) Fail(err error) {
	e.schedule(nil, err)
}

func (e *Event) schedule(value interface{}, err error) {
	if e.fired {
		return
	}
	e.kernel.push(0, func() {
		e.fireNow(value, err)
	})
}

func (e *Event) fireNow(value interface{}, err error) {
	if e.fired {
		return
	}
	e.fired = true
	e.value = value
	e.err = err
	waiters := e.waiters
	e.waiters = nil
	for _, we := range waiters {
		if we.cancelled {
			continue
		}
		we.fn(value, err)
	}
}

// Timeout returns an event that fires dt seconds from now (spec.md §4.1
// "timeout(dt): schedule self-resume at now+dt").
func (k *Kernel) Timeout(dt int64) *Event {
	e := k.newEvent()
	k.push(dt, func() {
		e.fireNow(nil, nil)
	})
	return e
}
