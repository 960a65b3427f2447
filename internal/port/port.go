// Package port implements the energy port graph (spec.md §4.3): a port
// holds the current flow and notifies subscribers only on actual change; a
// multi-port recomputes its output whenever any input changes, which is the
// sole mechanism by which upstream components learn of downstream changes.
package port

import "github.com/nexabus/evsim/internal/energy"

// Handler is called with a port's new flow whenever it changes.
type Handler func(energy.Flow)

// Port holds a single current flow and a list of change subscribers.
type Port struct {
	Name    string
	current energy.Flow
	set     bool
	subs    []Handler
}

// New creates a named, empty port.
func New(name string) *Port {
	return &Port{Name: name}
}

// Flow returns the port's current value.
func (p *Port) Flow() energy.Flow { return p.current }

// Subscribe registers h to be called on every future change. It is not
// invoked for the port's current value.
func (p *Port) Subscribe(h Handler) {
	p.subs = append(p.subs, h)
}

// Set updates the port's flow. Subscribers are notified only if the new
// value differs from the previously held one (spec.md §4.3: "notifies
// subscribers only on actual change (exact equality of the reference
// value)").
func (p *Port) Set(f energy.Flow) {
	if p.set && p.current == f {
		return
	}
	p.current = f
	p.set = true
	for _, h := range p.subs {
		h(f)
	}
}
