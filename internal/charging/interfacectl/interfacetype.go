// Package interfacectl implements the per-vehicle charging interface: its
// type catalogue, its dock/undock/connect state machine, and the decision
// loop invoked once per driving segment and once per post-leg pause
// (spec.md §4.5), grounded on original_source/eflips/energy.py's
// ChargingInterfaceType/ChargingInterface and vehicle.py's
// _interface_controller/_charging_process.
package interfacectl

import "github.com/nexabus/evsim/internal/energy"

// InterfaceType describes a class of charging interface: pantograph, plug,
// inductive pad, and so on.
type InterfaceType struct {
	Name   string
	Medium energy.Medium

	// Dynamic interfaces can charge while the vehicle is in motion (e.g. an
	// overhead catenary segment); non-dynamic interfaces require the
	// vehicle to be stationary.
	Dynamic             bool
	MaxFlowKW           float64
	MaxFlowStationaryKW float64
	DynamicDock         bool
	DynamicUndock       bool

	DeadTimeDockS   int64
	DeadTimeUndockS int64

	// Bidirectional interfaces can feed recuperated power back to the grid.
	Bidirectional bool
}

// EffectiveMaxFlowKW returns the flow limit in force given whether the
// vehicle is currently moving.
func (t InterfaceType) EffectiveMaxFlowKW(inMotion bool) float64 {
	if !t.Dynamic || !inMotion {
		if t.Dynamic {
			return t.MaxFlowStationaryKW
		}
		return t.MaxFlowKW
	}
	return t.MaxFlowKW
}

// Pantograph450 is a stationary pantograph rated 450kW at 95% efficiency,
// bidirectional.
var Pantograph450 = InterfaceType{
	Name:            "Stationary pantograph 450 kW",
	Medium:          energy.Electricity,
	Dynamic:         false,
	MaxFlowKW:       450 * 0.95,
	DeadTimeDockS:   15,
	DeadTimeUndockS: 15,
	Bidirectional:   true,
}

// Pantograph300 is a stationary pantograph rated 300kW at 95% efficiency,
// bidirectional.
var Pantograph300 = InterfaceType{
	Name:            "Stationary pantograph 300 kW",
	Medium:          energy.Electricity,
	Dynamic:         false,
	MaxFlowKW:       300 * 0.95,
	DeadTimeDockS:   15,
	DeadTimeUndockS: 15,
	Bidirectional:   true,
}

// Plug is a manual plug-in connector rated 150kW at 95% efficiency,
// bidirectional, with a minute-scale dead time for manual plugging.
var Plug = InterfaceType{
	Name:            "Manual plug",
	Medium:          energy.Electricity,
	Dynamic:         false,
	MaxFlowKW:       150 * 0.95,
	DeadTimeDockS:   60,
	DeadTimeUndockS: 60,
	Bidirectional:   true,
}
