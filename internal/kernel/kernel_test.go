package kernel

import "testing"

func TestTimeoutOrdering(t *testing.T) {
	k := New()
	var order []string

	k.Process("a", func(p *Process) error {
		if err := p.Timeout(10); err != nil {
			return err
		}
		order = append(order, "a@10")
		return nil
	})
	k.Process("b", func(p *Process) error {
		if err := p.Timeout(5); err != nil {
			return err
		}
		order = append(order, "b@5")
		return nil
	})

	k.Run(nil)

	if len(order) != 2 || order[0] != "b@5" || order[1] != "a@10" {
		t.Fatalf("unexpected firing order: %v", order)
	}
	if k.Now() != 10 {
		t.Fatalf("expected clock to end at 10, got %d", k.Now())
	}
}

func TestSameTimeFIFO(t *testing.T) {
	k := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		k.Process("p", func(p *Process) error {
			if err := p.Timeout(1); err != nil {
				return err
			}
			order = append(order, i)
			return nil
		})
	}
	k.Run(nil)
	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order at equal time, got %v", order)
		}
	}
}

func TestResourceContentionAndQueueing(t *testing.T) {
	k := New()
	res := k.NewResource(1)
	var log []string

	k.Process("A", func(p *Process) error {
		if _, err := p.Wait(res.Get()); err != nil {
			return err
		}
		log = append(log, "A-acquired")
		if err := p.Timeout(100); err != nil {
			return err
		}
		res.Release()
		log = append(log, "A-released")
		return nil
	})

	k.Process("B", func(p *Process) error {
		if err := p.Timeout(1); err != nil {
			return err
		}
		if _, err := p.Wait(res.Get()); err != nil {
			return err
		}
		log = append(log, "B-acquired")
		return nil
	})

	k.Run(nil)

	want := []string{"A-acquired", "A-released", "B-acquired"}
	if len(log) != len(want) {
		t.Fatalf("unexpected log: %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("unexpected log: %v", log)
		}
	}
}

func TestInterruptDuringTimeout(t *testing.T) {
	k := New()
	var interrupted bool
	var cause interface{}

	victim := k.Process("victim", func(p *Process) error {
		err := p.Timeout(100)
		if ie, ok := err.(*Interrupted); ok {
			interrupted = true
			cause = ie.Cause
			return nil
		}
		return err
	})

	k.Process("interruptor", func(p *Process) error {
		if err := p.Timeout(5); err != nil {
			return err
		}
		return p.Interrupt(victim, "deadline")
	})

	k.Run(nil)

	if !interrupted {
		t.Fatalf("expected victim to observe an interrupt")
	}
	if cause != "deadline" {
		t.Fatalf("unexpected interrupt cause: %v", cause)
	}
	if k.Now() != 100 {
		t.Fatalf("expected Run to drain the interrupted timeout's queued firing at 100, got %d", k.Now())
	}
}

func TestAllOfWaitsForEveryEvent(t *testing.T) {
	k := New()
	var done bool

	k.Process("joiner", func(p *Process) error {
		e1 := k.Timeout(5)
		e2 := k.Timeout(10)
		if err := p.AllOf(e1, e2); err != nil {
			return err
		}
		done = true
		return nil
	})

	k.Run(nil)

	if !done {
		t.Fatalf("expected AllOf to complete")
	}
	if k.Now() != 10 {
		t.Fatalf("expected clock at 10 (slowest constituent), got %d", k.Now())
	}
}

func TestResourceNeverExceedsCapacity(t *testing.T) {
	k := New()
	res := k.NewResource(2)
	const n = 6
	var maxInUse int

	for i := 0; i < n; i++ {
		k.Process("p", func(p *Process) error {
			if _, err := p.Wait(res.Get()); err != nil {
				return err
			}
			if res.InUse() > maxInUse {
				maxInUse = res.InUse()
			}
			if err := p.Timeout(1); err != nil {
				return err
			}
			res.Release()
			return nil
		})
	}
	k.Run(nil)

	if maxInUse > 2 {
		t.Fatalf("resource exceeded capacity: %d", maxInUse)
	}
}
