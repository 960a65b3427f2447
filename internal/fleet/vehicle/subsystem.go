package vehicle

import (
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/charging/controller"
	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
	"github.com/nexabus/evsim/internal/storage"
)

// Subsystem is one of a vehicle's energy subsystems: a storage, the loads
// drawing on it, the charge controller arbitrating interface/storage/load
// flow, and the interfaces this subsystem can connect through. Grounded on
// original_source/eflips/energy.py's EnergySubSystem, which bundles exactly
// these four collaborators per medium.
type Subsystem struct {
	Medium     energy.Medium
	Loads      *port.MultiPort
	Storage    *storage.Store
	Controller *controller.Controller
	Interfaces []*interfacectl.Interface

	active *interfacectl.Interface
}

func newSubsystem(k *kernel.Kernel, log *zap.Logger, medium energy.Medium, store *storage.Store, interfaces []*interfacectl.Interface) *Subsystem {
	loads := port.NewMultiPort(medium.Name+"-loads", medium)
	c := controller.New(k, log, medium, loads.Output, store)
	s := &Subsystem{
		Medium:     medium,
		Loads:      loads,
		Storage:    store,
		Controller: c,
		Interfaces: interfaces,
	}
	// The controller's interface-side flow must reach whichever physical
	// interface is currently connected, so the facility it is docked at
	// observes it (spec.md §4.4 "interface providing a signed max supply").
	c.InterfacePort.Subscribe(func(f energy.Flow) {
		if s.active != nil {
			s.active.Port.Set(f)
		}
	})
	return s
}

// AddLoad connects a named load port to this subsystem's aggregate.
func (s *Subsystem) AddLoad(name string, p *port.Port) {
	s.Loads.Connect(name, p)
}

// ConnectInterface tells the charge controller that iface is now the
// connected interface, with its effective max supply depending on whether
// the vehicle is currently in motion (spec.md §4.5's dynamic/static
// max-flow distinction).
func (s *Subsystem) ConnectInterface(iface *interfacectl.Interface, inMotion bool) {
	s.active = iface
	s.Controller.Connect(iface.Type.EffectiveMaxFlowKW(inMotion), iface.Type.Bidirectional)
}

// DisconnectInterface tells the charge controller no interface is connected.
func (s *Subsystem) DisconnectInterface() {
	s.Controller.Disconnect()
	s.active = nil
}

// AvailableFacilities narrows a location's facility map down to the
// interface types this subsystem actually carries, in the subsystem's
// preference order (spec.md §4.5 step 1).
func (s *Subsystem) AvailableFacilities(atLocation map[string]interfacectl.Facility) (*interfacectl.Interface, interfacectl.Facility, bool) {
	return interfacectl.SelectInterface(s.Interfaces, atLocation)
}
