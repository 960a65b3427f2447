// Package facility implements charging points and segments: the
// capacity-bounded slot pool a vehicle's interface requests, and the
// aggregate load port a charge controller's interface flow feeds into
// (spec.md §4.5, §4.9), grounded on original_source/eflips/charging.py's
// Slot/SlotPool/ChargingFacility/ChargingPoint/ChargingSegment.
package facility

import (
	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
)

// Kind distinguishes a stationary charging point from an in-motion
// charging segment; the only behavioural difference is that a point
// carries non-zero manoeuvre durations while a segment does not.
type Kind int

const (
	Point Kind = iota
	Segment
)

// Facility is a charging point or segment: a fixed location offering a
// single interface type through a capacity-bounded slot pool.
type Facility struct {
	k *kernel.Kernel

	ID            string
	Kind          Kind
	InterfaceType interfacectl.InterfaceType
	Location      grid.Point
	Capacity      int

	ManoeuvreBeforeS int64
	ManoeuvreAfterS  int64

	slots *kernel.Resource

	// loads aggregates every connected interface's flow; in is what a
	// station-side supply (e.g. a grid connection with its own limits)
	// observes.
	loads *port.MultiPort
	in    *port.Port

	maxOccupation int
	onStateChange []func()
}

// NewPoint builds a stationary charging point.
func NewPoint(k *kernel.Kernel, id string, t interfacectl.InterfaceType, location grid.Point, capacity int, manoeuvreBeforeS, manoeuvreAfterS int64) *Facility {
	return newFacility(k, id, Point, t, location, capacity, manoeuvreBeforeS, manoeuvreAfterS)
}

// NewSegment builds an in-motion charging segment, which has no manoeuvre
// time (a vehicle traveling the segment is already positioned).
func NewSegment(k *kernel.Kernel, id string, t interfacectl.InterfaceType, location grid.Point, capacity int) *Facility {
	return newFacility(k, id, Segment, t, location, capacity, 0, 0)
}

func newFacility(k *kernel.Kernel, id string, kind Kind, t interfacectl.InterfaceType, location grid.Point, capacity int, manoeuvreBeforeS, manoeuvreAfterS int64) *Facility {
	return &Facility{
		k:                k,
		ID:               id,
		Kind:             kind,
		InterfaceType:    t,
		Location:         location,
		Capacity:         capacity,
		ManoeuvreBeforeS: manoeuvreBeforeS,
		ManoeuvreAfterS:  manoeuvreAfterS,
		slots:            k.NewResource(capacity),
		loads:            port.NewMultiPort(id+"-loads", t.Medium),
		in:               port.New(id + "-in"),
	}
}

// IsVacant reports whether at least one slot is free.
func (f *Facility) IsVacant() bool { return f.slots.InUse() < f.Capacity }

// InUse returns the number of currently occupied slots.
func (f *Facility) InUse() int { return f.slots.InUse() }

// RequestSlot requests one charging slot, returning an event that fires
// once granted.
func (f *Facility) RequestSlot() *kernel.Event {
	req := f.slots.Get()
	req.AddWaiter(func(interface{}, error) {
		if f.slots.InUse() > f.maxOccupation {
			f.maxOccupation = f.slots.InUse()
		}
		f.notify()
	})
	return req
}

// CancelSlotRequest abandons a not-yet-granted slot request.
func (f *Facility) CancelSlotRequest(e *kernel.Event) { f.slots.Cancel(e) }

// ReleaseSlot returns a held slot to the pool.
func (f *Facility) ReleaseSlot() {
	f.slots.Release()
	f.notify()
}

// ManoeuvreDurationBeforeS implements interfacectl.Facility.
func (f *Facility) ManoeuvreDurationBeforeS() int64 { return f.ManoeuvreBeforeS }

// ManoeuvreDurationAfterS implements interfacectl.Facility.
func (f *Facility) ManoeuvreDurationAfterS() int64 { return f.ManoeuvreAfterS }

// Loads implements interfacectl.Facility: the aggregate of every connected
// interface's flow.
func (f *Facility) Loads() *port.MultiPort { return f.loads }

// InPort is the station-side supply port this facility draws its total
// load from.
func (f *Facility) InPort() *port.Port { return f.in }

// MaxOccupation returns the highest number of simultaneously occupied
// slots observed so far.
func (f *Facility) MaxOccupation() int { return f.maxOccupation }

// OnStateChange registers fn to run whenever occupation changes (slot
// granted or released).
func (f *Facility) OnStateChange(fn func()) {
	f.onStateChange = append(f.onStateChange, fn)
}

func (f *Facility) notify() {
	for _, fn := range f.onStateChange {
		fn()
	}
}
