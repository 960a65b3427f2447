package facility

import (
	"testing"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
)

func TestRequestSlotGrantsImmediatelyWhenVacant(t *testing.T) {
	k := kernel.New()
	loc := grid.Point{ID: "depot", Name: "Depot"}
	f := NewPoint(k, "pantograph-1", interfacectl.Pantograph450, loc, 2, 30, 10)

	if !f.IsVacant() {
		t.Fatalf("expected a fresh facility to be vacant")
	}

	var granted bool
	k.Process("vehicle", func(p *kernel.Process) error {
		if _, err := p.Wait(f.RequestSlot()); err != nil {
			return err
		}
		granted = true
		return nil
	})
	k.Run(nil)

	if !granted {
		t.Fatalf("expected immediate grant when capacity is free")
	}
}

func TestSlotPoolQueuesBeyondCapacity(t *testing.T) {
	k := kernel.New()
	loc := grid.Point{ID: "depot", Name: "Depot"}
	f := NewPoint(k, "plug-1", interfacectl.Plug, loc, 1, 0, 0)

	var log []string
	k.Process("first", func(p *kernel.Process) error {
		if _, err := p.Wait(f.RequestSlot()); err != nil {
			return err
		}
		log = append(log, "first-acquired")
		if err := p.Timeout(50); err != nil {
			return err
		}
		f.ReleaseSlot()
		log = append(log, "first-released")
		return nil
	})
	k.Process("second", func(p *kernel.Process) error {
		if err := p.Timeout(1); err != nil {
			return err
		}
		if f.IsVacant() {
			t.Errorf("expected facility to be fully occupied")
		}
		if _, err := p.Wait(f.RequestSlot()); err != nil {
			return err
		}
		log = append(log, "second-acquired")
		return nil
	})
	k.Run(nil)

	want := []string{"first-acquired", "first-released", "second-acquired"}
	if len(log) != len(want) {
		t.Fatalf("unexpected log: %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("unexpected log: %v", log)
		}
	}
	if f.MaxOccupation() != 1 {
		t.Fatalf("expected max occupation of 1, got %d", f.MaxOccupation())
	}
}

func TestNetworkLooksUpByLocationAndInterfaceType(t *testing.T) {
	k := kernel.New()
	n := NewNetwork(k)
	loc := grid.Point{ID: "stop-7", Name: "Stop 7"}
	n.CreateSegment("seg-pantograph", interfacectl.Pantograph300, loc, 4)

	available := n.AtSegment("stop-7")
	if _, ok := available[interfacectl.Pantograph300.Name]; !ok {
		t.Fatalf("expected the created segment facility to be indexed by interface type")
	}
	if _, ok := available[interfacectl.Plug.Name]; ok {
		t.Fatalf("expected no facility for an interface type never created here")
	}
}
