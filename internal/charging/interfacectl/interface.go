package interfacectl

import (
	"fmt"

	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
	"github.com/nexabus/evsim/internal/simerr"
)

// Facility is what a charging point or segment exposes to the interface
// controller (internal/facility's ChargingPoint/ChargingSegment satisfy
// this).
type Facility interface {
	IsVacant() bool
	RequestSlot() *kernel.Event
	CancelSlotRequest(e *kernel.Event)
	ReleaseSlot()
	ManoeuvreDurationBeforeS() int64
	ManoeuvreDurationAfterS() int64
	Loads() *port.MultiPort
}

// State is the interface's docking/connection state.
type State int

const (
	Undocked State = iota
	Docked
	Connected
)

func (s State) String() string {
	switch s {
	case Undocked:
		return "undocked"
	case Docked:
		return "docked"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Interface is one of a vehicle's charging interfaces: a named type plus
// the live dock/connect state and the port through which its flow is
// observed.
type Interface struct {
	k        *kernel.Kernel
	Type     InterfaceType
	Port     *port.Port
	state    State
	facility Facility

	// Priority disambiguates otherwise-equal facility matches at a location
	// carrying more than one facility of a type this interface accepts;
	// unused by SelectInterface today, which resolves ties by the vehicle's
	// interface preference order (spec.md §9's open question on facility
	// tie-breaking), but carried for callers that need a stable secondary
	// sort, grounded on original_source/eflips/charging.py's
	// ChargingScheduleParams.priority.
	Priority int
}

// New builds an undocked Interface of the given type.
func New(k *kernel.Kernel, t InterfaceType) *Interface {
	return &Interface{k: k, Type: t, Port: port.New(t.Name), state: Undocked}
}

// State returns the interface's current docking/connection state.
func (i *Interface) State() State { return i.state }

// IsDocked reports whether the interface is docked or connected.
func (i *Interface) IsDocked() bool { return i.state != Undocked }

// IsConnected reports whether the interface is actively connected to a
// facility.
func (i *Interface) IsConnected() bool { return i.state == Connected }

// Dock suspends for the interface type's docking dead time, then marks the
// interface docked.
func (i *Interface) Dock(p *kernel.Process) error {
	if i.state != Undocked {
		return nil
	}
	if err := p.Timeout(i.Type.DeadTimeDockS); err != nil {
		return err
	}
	i.state = Docked
	return nil
}

// Undock marks the interface undocked, then suspends for the undocking
// dead time.
func (i *Interface) Undock(p *kernel.Process) error {
	if i.state == Undocked {
		return nil
	}
	i.state = Undocked
	return p.Timeout(i.Type.DeadTimeUndockS)
}

// Connect attaches the interface to facility, publishing its flow onto the
// facility's aggregate load. Connecting while already connected is a bug
// (spec.md §7 "Duplicate interface connect") and is reported as fatal.
func (i *Interface) Connect(facility Facility) error {
	if i.state == Connected {
		return simerr.New(simerr.KindDuplicateInterfaceConnect,
			fmt.Sprintf("interface %s already connected", i.Type.Name))
	}
	i.facility = facility
	i.state = Connected
	facility.Loads().Connect(i.connectionKey(), i.Port)
	return nil
}

// Disconnect detaches the interface from its facility, if connected.
func (i *Interface) Disconnect() {
	if i.state != Connected {
		return
	}
	i.facility.Loads().Disconnect(i.connectionKey())
	i.facility = nil
	i.state = Docked
}

// connectionKey identifies this interface's contribution to a facility's
// aggregate load, unique per interface instance.
func (i *Interface) connectionKey() string {
	return fmt.Sprintf("%p", i)
}
