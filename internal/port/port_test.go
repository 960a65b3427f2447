package port

import (
	"testing"

	"github.com/nexabus/evsim/internal/energy"
)

func TestSetNotifiesOnlyOnChange(t *testing.T) {
	p := New("load")
	var calls int
	p.Subscribe(func(energy.Flow) { calls++ })

	p.Set(energy.NewFlow(energy.Electricity, 10))
	if calls != 1 {
		t.Fatalf("expected 1 call after first set, got %d", calls)
	}

	p.Set(energy.NewFlow(energy.Electricity, 10))
	if calls != 1 {
		t.Fatalf("expected no notification on unchanged value, got %d calls", calls)
	}

	p.Set(energy.NewFlow(energy.Electricity, 5))
	if calls != 2 {
		t.Fatalf("expected notification on changed value, got %d calls", calls)
	}
}

func TestMultiPortSumsInputs(t *testing.T) {
	mp := NewMultiPort("bus", energy.Electricity)
	a := New("a")
	b := New("b")

	mp.Connect("a", a)
	mp.Connect("b", b)

	a.Set(energy.NewFlow(energy.Electricity, 10))
	b.Set(energy.NewFlow(energy.Electricity, 5))

	if got := mp.Output.Flow().KW; got != 15 {
		t.Fatalf("expected sum 15, got %v", got)
	}

	a.Set(energy.NewFlow(energy.Electricity, 2))
	if got := mp.Output.Flow().KW; got != 7 {
		t.Fatalf("expected sum 7 after a changes, got %v", got)
	}
}

func TestMultiPortDisconnectRemovesContribution(t *testing.T) {
	mp := NewMultiPort("bus", energy.Electricity)
	a := New("a")
	mp.Connect("a", a)
	a.Set(energy.NewFlow(energy.Electricity, 10))

	mp.Disconnect("a")
	if got := mp.Output.Flow().KW; got != 0 {
		t.Fatalf("expected 0 after disconnect, got %v", got)
	}
}
