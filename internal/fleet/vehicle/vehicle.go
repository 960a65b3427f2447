// Package vehicle composes a vehicle's energy subsystems, traction model,
// and climate system from a Type record, grounded on
// original_source/eflips/vehicle.py's VehicleAbstract/SimpleVehicle/
// VehicleWithHVAC (spec.md §4's "Vehicle core").
package vehicle

import (
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
	"github.com/nexabus/evsim/internal/storage"
)

// dieselTankNominalKWh sizes the HvacDualMedia backup fuel tank generously
// relative to a week's worth of backup heating so it never runs dry; depot
// refuelling is not modelled (out of spec.md's scope, which names only
// charging infrastructure).
const dieselTankNominalKWh = 5000

// Architecture selects which subsystems a vehicle type is built from,
// replacing the source's string-switch factory with a tagged variant
// (spec.md §9 "Dynamic dispatch on vehicle architecture").
type Architecture int

const (
	// SimpleElectric carries one electric subsystem with traction and
	// auxiliary loads; no HVAC.
	SimpleElectric Architecture = iota
	// HvacElectric adds an all-electric HVAC system (AC, heat pump, electric
	// backup heating) to the electric subsystem.
	HvacElectric
	// HvacDualMedia keeps electric AC/heat-pump but backs heating with a
	// second, diesel-fuelled subsystem, grounded on original_source's
	// diesel-fired backup heater on an otherwise electric bus.
	HvacDualMedia
)

// BatteryParams builds the primary traction battery (spec.md §6
// `vehicle_params.<type>.battery`).
type BatteryParams struct {
	CapacityMaxKWh float64
	SocReserve     float64
	SocMin         float64
	SocMax         float64
	SocInit        float64
	SoH            float64
	DischargeRateC float64
	ChargeRateC    float64
}

// Type is a vehicle type's static configuration: load model, traction
// model, battery build, HVAC topology, and preference-ordered charging
// interfaces (spec.md §6 `vehicle_params.<type>.*`).
type Type struct {
	Name         string
	Architecture Architecture

	NumPassengers int
	KerbWeightKg  float64
	AuxPowerKW    float64

	TractionConsumptionKWhPerKm float64

	Battery BatteryParams
	HVAC    HVACParams

	// ChargingInterfaceTypes is the preference-ordered list of interface
	// types this vehicle type accepts (spec.md §6
	// `vehicle_params.<type>.charging_interfaces[]`).
	ChargingInterfaceTypes []interfacectl.InterfaceType
}

// Vehicle is one simulated bus: its subsystems, traction and climate
// systems, and driving/telemetry state (spec.md §3 "Lifecycles": a
// vehicle's storage lifetime matches its own).
type Vehicle struct {
	k   *kernel.Kernel
	log *zap.Logger

	ID   string
	Type *Type

	Battery   *storage.Battery
	Primary   *Subsystem
	Secondary *Subsystem // diesel backup-heat subsystem, HvacDualMedia only

	Traction *Traction
	HVAC     *HVAC
	AuxPort  *port.Port

	Location  grid.Point
	InMotion  bool
	ACRequest bool

	OdometerKm     float64
	OperationTimeS int64
	DelayS         int64
}

// New builds a vehicle of type t, wiring its subsystems' loads and charge
// controllers per its architecture.
func New(k *kernel.Kernel, log *zap.Logger, id string, t *Type, location grid.Point) *Vehicle {
	if log == nil {
		log = zap.NewNop()
	}

	battery := storage.NewBattery(k, energy.Electricity,
		t.Battery.CapacityMaxKWh, t.Battery.SocReserve, t.Battery.SocMin,
		t.Battery.SocMax, t.Battery.SocInit, t.Battery.SoH,
		t.Battery.DischargeRateC, t.Battery.ChargeRateC, 0.95, 0.95)

	interfaces := make([]*interfacectl.Interface, len(t.ChargingInterfaceTypes))
	for i, it := range t.ChargingInterfaceTypes {
		interfaces[i] = interfacectl.New(k, it)
	}

	v := &Vehicle{
		k:        k,
		log:      log,
		ID:       id,
		Type:     t,
		Battery:  battery,
		Primary:  newSubsystem(k, log, energy.Electricity, battery.Store, interfaces),
		Traction: NewTraction(energy.Electricity, t.TractionConsumptionKWhPerKm),
		AuxPort:  port.New("aux"),
		Location: location,
	}

	v.Primary.AddLoad("traction", v.Traction.Port)
	v.Primary.AddLoad("aux", v.AuxPort)
	v.AuxPort.Set(energy.NewFlow(energy.Electricity, t.AuxPowerKW))

	switch t.Architecture {
	case HvacElectric:
		hvacParams := t.HVAC
		hvacParams.BackupMedium = energy.Electricity
		v.HVAC = NewHVAC(hvacParams)
		v.Primary.AddLoad("hvac", v.HVAC.ElectricPort)
	case HvacDualMedia:
		hvacParams := t.HVAC
		hvacParams.BackupMedium = energy.Diesel
		v.HVAC = NewHVAC(hvacParams)
		v.Primary.AddLoad("hvac", v.HVAC.ElectricPort)

		tank := storage.NewDieselTank(k, energy.Diesel, dieselTankNominalKWh, dieselTankNominalKWh)
		v.Secondary = newSubsystem(k, log, energy.Diesel, tank, nil)
		v.Secondary.AddLoad("hvac-backup", v.HVAC.BackupPort)
	}

	return v
}

// SetACRequest switches the climate system on or off and recomputes its
// draw for the given ambient/cabin temperatures (spec.md §6
// `ambient_params.temperature`, `vehicle_params.<type>.cabin_temperature`).
// A no-op on a SimpleElectric vehicle, which carries no HVAC.
func (v *Vehicle) SetACRequest(on bool, ambientC, cabinC float64) {
	v.ACRequest = on
	if v.HVAC != nil {
		v.HVAC.Update(on, ambientC, cabinC)
	}
}

// SocValid reports whether every energy storage component holds a valid
// state of charge (spec.md §3 "vehicle has at most one connected interface
// per subsystem" neighbour property — the analogous all-subsystems check
// for validity), grounded on VehicleAbstract.soc_valid.
func (v *Vehicle) SocValid() bool {
	if !v.Primary.Storage.SocValid() {
		return false
	}
	if v.Secondary != nil && !v.Secondary.Storage.SocValid() {
		return false
	}
	return true
}

// SocCritical reports whether any energy storage component has reached a
// critical state of charge, grounded on VehicleAbstract.soc_critical.
func (v *Vehicle) SocCritical() bool {
	if v.Primary.Storage.SocCritical() {
		return true
	}
	if v.Secondary != nil && v.Secondary.Storage.SocCritical() {
		return true
	}
	return false
}

// WasInvalid reports whether any energy storage component ever breached its
// validity bound while AllowInvalidSoc was set.
func (v *Vehicle) WasInvalid() bool {
	if v.Primary.Storage.WasInvalid() {
		return true
	}
	if v.Secondary != nil && v.Secondary.Storage.WasInvalid() {
		return true
	}
	return false
}

// RangeEstimateKm estimates remaining range from the primary battery's
// usable energy and the traction model's specific consumption, grounded on
// VehicleAbstract.range_estimate.
func (v *Vehicle) RangeEstimateKm() float64 {
	if v.Type.TractionConsumptionKWhPerKm <= 0 {
		return 0
	}
	return v.Battery.EnergyRemainingKWh() / v.Type.TractionConsumptionKWhPerKm
}

// Subsystems returns every energy subsystem this vehicle carries, primary
// first.
func (v *Vehicle) Subsystems() []*Subsystem {
	if v.Secondary == nil {
		return []*Subsystem{v.Primary}
	}
	return []*Subsystem{v.Primary, v.Secondary}
}
