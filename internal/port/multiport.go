package port

import "github.com/nexabus/evsim/internal/energy"

// MultiPort sums a fixed set of named input ports onto a single output
// port, recomputing the sum whenever any input changes (spec.md §4.3:
// "a multi-port recomputes its output whenever any input changes").
type MultiPort struct {
	Output *Port
	inputs map[string]*Port
	medium energy.Medium
}

// NewMultiPort creates a multi-port whose output carries the given medium.
func NewMultiPort(name string, medium energy.Medium) *MultiPort {
	return &MultiPort{
		Output: New(name),
		inputs: make(map[string]*Port),
		medium: medium,
	}
}

// Connect attaches a named input port. Its future changes recompute the
// multi-port's output; its current value is folded in immediately.
func (m *MultiPort) Connect(name string, p *Port) {
	m.inputs[name] = p
	p.Subscribe(func(energy.Flow) {
		m.recompute()
	})
	m.recompute()
}

// Disconnect removes a named input, treating it as contributing zero flow.
func (m *MultiPort) Disconnect(name string) {
	delete(m.inputs, name)
	m.recompute()
}

// Input returns the named input port, or nil if not connected.
func (m *MultiPort) Input(name string) *Port {
	return m.inputs[name]
}

func (m *MultiPort) recompute() {
	sum := energy.NewFlow(m.medium, 0)
	for _, p := range m.inputs {
		f := p.Flow()
		if f.KW == 0 && f.Medium == (energy.Medium{}) {
			continue
		}
		added, err := sum.Add(f)
		if err != nil {
			continue
		}
		sum = added
	}
	m.Output.Set(sum)
}
