package facility

import (
	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
)

// Network indexes charging points and segments by location and interface
// type, letting the interface controller look up "what can charge me here"
// in one call (spec.md §4.5 step 1), grounded on
// original_source/eflips/charging.py's ChargingFacilityContainer/
// ChargingNetwork.
type Network struct {
	k        *kernel.Kernel
	points   map[string]map[string]*Facility
	segments map[string]map[string]*Facility
	byID     map[string]*Facility
}

// NewNetwork builds an empty charging network.
func NewNetwork(k *kernel.Kernel) *Network {
	return &Network{
		k:        k,
		points:   make(map[string]map[string]*Facility),
		segments: make(map[string]map[string]*Facility),
		byID:     make(map[string]*Facility),
	}
}

// CreatePoint adds a stationary charging point at location and registers
// it in the network.
func (n *Network) CreatePoint(id string, t interfacectl.InterfaceType, location grid.Point, capacity int, manoeuvreBeforeS, manoeuvreAfterS int64) *Facility {
	f := NewPoint(n.k, id, t, location, capacity, manoeuvreBeforeS, manoeuvreAfterS)
	n.add(n.points, f)
	return f
}

// CreateSegment adds an in-motion charging segment and registers it.
func (n *Network) CreateSegment(id string, t interfacectl.InterfaceType, location grid.Point, capacity int) *Facility {
	f := NewSegment(n.k, id, t, location, capacity)
	n.add(n.segments, f)
	return f
}

func (n *Network) add(index map[string]map[string]*Facility, f *Facility) {
	byType, ok := index[f.Location.ID]
	if !ok {
		byType = make(map[string]*Facility)
		index[f.Location.ID] = byType
	}
	if _, exists := byType[f.InterfaceType.Name]; exists {
		return
	}
	byType[f.InterfaceType.Name] = f
	n.byID[f.ID] = f
}

// AtPoint returns the interface-type-keyed facilities available at a
// stationary location.
func (n *Network) AtPoint(locationID string) map[string]interfacectl.Facility {
	return asFacilityMap(n.points[locationID])
}

// AtSegment returns the interface-type-keyed facilities available on a
// driving segment at locationID (the segment's own ID, not its endpoints).
func (n *Network) AtSegment(locationID string) map[string]interfacectl.Facility {
	return asFacilityMap(n.segments[locationID])
}

func asFacilityMap(byType map[string]*Facility) map[string]interfacectl.Facility {
	out := make(map[string]interfacectl.Facility, len(byType))
	for name, f := range byType {
		out[name] = f
	}
	return out
}

// ByID returns a registered facility by ID.
func (n *Network) ByID(id string) (*Facility, bool) {
	f, ok := n.byID[id]
	return f, ok
}

// All returns every registered facility, points and segments alike, for
// callers that need to observe the whole network rather than look up one
// location (spec.md §4.10's per-facility occupation series).
func (n *Network) All() []*Facility {
	out := make([]*Facility, 0, len(n.byID))
	for _, f := range n.byID {
		out = append(out, f)
	}
	return out
}
