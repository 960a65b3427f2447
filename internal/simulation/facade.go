// Package simulation implements the facade spec.md §4.10 describes: it
// constructs the event kernel, charging network, fleet, depot, and
// dispatcher from one parameter record and a timetable, runs the kernel,
// and assembles an evaluation record. Grounded on
// original_source/eflips/simulation.py's Simulation class, which is the
// single entry point the rest of the source's tooling (scripts, the
// batch runner) drives.
package simulation

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/facility"
	"github.com/nexabus/evsim/internal/fleet"
	"github.com/nexabus/evsim/internal/fleet/depot"
	"github.com/nexabus/evsim/internal/fleet/driver"
	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/scheduling"
	"github.com/nexabus/evsim/internal/simerr"
	"github.com/nexabus/evsim/internal/simparams"
)

// interfaceCatalogue resolves the named interface types spec.md §6's
// configuration tables reference to interfacectl.InterfaceType values.
// The scheduler and vehicle-params tables only ever name an interface by
// string, so the facade is where that name is bound to a concrete type.
var interfaceCatalogue = map[string]interfacectl.InterfaceType{
	"pantograph_450": interfacectl.Pantograph450,
	"pantograph_300": interfacectl.Pantograph300,
	"plug":           interfacectl.Plug,
}

func lookupInterface(name string) (interfacectl.InterfaceType, error) {
	it, ok := interfaceCatalogue[name]
	if !ok {
		return interfacectl.InterfaceType{}, fmt.Errorf("simulation: unknown interface type %q", name)
	}
	return it, nil
}

// hvacDefaults fills in the per-unit capacity/COP figures spec.md §6's
// hvac table doesn't carry (it only names unit counts and the heat-pump
// cutoff temperature); every vehicle type's HVAC units share these, a
// simplification documented in DESIGN.md.
var hvacDefaults = struct {
	capacityACKW, copAC             float64
	capacityHPKW, copHP             float64
	capacityBackupKW, copBackup     float64
	thermalCoefficientKWPerC        float64
}{
	capacityACKW: 7, copAC: 3,
	capacityHPKW: 10, copHP: 2.5,
	capacityBackupKW: 15, copBackup: 1,
	thermalCoefficientKWPerC: 1.2,
}

// Facade is one constructed, runnable simulation: a kernel, a charging
// network, a fleet, a depot, a driver, and the generated duties it will
// dispatch one task per vehicle over.
type Facade struct {
	log    *zap.Logger
	kernel *kernel.Kernel

	network *facility.Network
	flt     *fleet.Fleet
	dep     depot.Depot
	drv     *driver.Driver

	duties []*scheduling.ScheduleNode
	runUntilS *int64

	rec *recorder
}

// New builds a Facade from params, a duty generator's tunables, the grid
// and distance oracle it draws deadhead legs from, and a timetable of
// passenger trips. The schedule generator runs as part of construction,
// so a feasibility failure (spec.md §7 "Unserviceable trip") surfaces
// here rather than at Run.
func New(log *zap.Logger, gr *grid.Grid, oracle grid.DistanceOracle, params simparams.Params, schedulerParams simparams.SchedulerParams, timetable []scheduling.PassengerTrip) (*Facade, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(params.Depot.Locations) == 0 {
		return nil, simerr.New(simerr.KindUnknown, "depot_params.locations is empty")
	}
	depotPoint, ok := gr.Point(params.Depot.Locations[0])
	if !ok {
		return nil, simerr.New(simerr.KindUnknown, fmt.Sprintf("depot location %q not in grid", params.Depot.Locations[0]))
	}

	k := kernel.New()
	network := facility.NewNetwork(k)
	chargingLocationIDs := make([]string, 0, len(params.ChargingPoints))
	for locID, cp := range params.ChargingPoints {
		pt, ok := gr.Point(locID)
		if !ok {
			return nil, simerr.New(simerr.KindUnknown, fmt.Sprintf("charging point location %q not in grid", locID))
		}
		it, err := lookupInterface(cp.InterfaceType)
		if err != nil {
			return nil, err
		}
		network.CreatePoint(locID+"/"+it.Name, it, pt, cp.Capacity, 0, 0)
		chargingLocationIDs = append(chargingLocationIDs, locID)
	}

	types := make([]*vehicle.Type, 0, len(params.VehicleTypes))
	profiles := make([]scheduling.VehicleTypeProfile, 0, len(params.VehicleTypes))
	for name, vp := range params.VehicleTypes {
		t, err := buildVehicleType(name, vp)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		profiles = append(profiles, vehicleProfile(name, vp))
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	flt := fleet.New(k, log, types)

	var dep depot.Depot
	if params.Depot.Charging {
		dc := params.DepotCharging[params.Depot.Locations[0]]
		dep = depot.NewCharging(k, log, depotPoint, flt, network, dc.DeadTimeBeforeS, dc.DeadTimeAfterS, dc.InterruptCharging)
	} else {
		dep = depot.NewSimple(k, log, depotPoint, flt)
	}

	gen := scheduling.NewGenerator(gr, oracle, schedulerParams, depotPoint, profiles, chargingLocationIDs)
	duties, err := gen.Generate(timetable)
	if err != nil {
		return nil, simerr.Wrap(simerr.KindUnserviceableTrip, "schedule generation failed", err)
	}

	drv := driver.New(k, network, interfacectl.DefaultParams, params.Global.Delays)

	return &Facade{
		log:       log,
		kernel:    k,
		network:   network,
		flt:       flt,
		dep:       dep,
		drv:       drv,
		duties:    duties,
		runUntilS: params.Simulation.RunUntilS,
	}, nil
}

func buildVehicleType(name string, vp simparams.VehicleTypeParams) (*vehicle.Type, error) {
	t := &vehicle.Type{
		Name:                        name,
		NumPassengers:               vp.NumPassengers,
		KerbWeightKg:                vp.KerbWeightKg,
		AuxPowerKW:                  vp.AuxPowerKW,
		TractionConsumptionKWhPerKm: vp.TractionConsumptionKWhPerKm,
		Battery: vehicle.BatteryParams{
			CapacityMaxKWh: vp.Battery.CapacityMaxKWh,
			SocReserve:     vp.Battery.SocReserve,
			SocMin:         vp.Battery.SocMin,
			SocMax:         vp.Battery.SocMax,
			SocInit:        vp.Battery.SocInit,
			SoH:            vp.Battery.SoH,
			DischargeRateC: vp.Battery.DischargeRateC,
			ChargeRateC:    vp.Battery.ChargeRateC,
		},
	}

	switch vp.Architecture {
	case "hvac_electric":
		t.Architecture = vehicle.HvacElectric
	case "hvac_dual_media":
		t.Architecture = vehicle.HvacDualMedia
	default:
		t.Architecture = vehicle.SimpleElectric
	}

	if t.Architecture != vehicle.SimpleElectric {
		t.HVAC = vehicle.HVACParams{
			NumAC: vp.HVAC.NumAC, CapacityACKW: hvacDefaults.capacityACKW, COPAC: hvacDefaults.copAC,
			NumHP: vp.HVAC.NumHeatPump, CapacityHPKW: hvacDefaults.capacityHPKW, COPHP: hvacDefaults.copHP,
			NumBackupUnits: vp.HVAC.NumBackupUnits, CapacityBackupKW: hvacDefaults.capacityBackupKW, COPBackup: hvacDefaults.copBackup,
			HPCutoffTemperatureC:     vp.HVAC.HeatPumpCutoffTempC,
			ThermalCoefficientKWPerC: hvacDefaults.thermalCoefficientKWPerC,
		}
	}

	for _, name := range vp.ChargingInterfaces {
		it, err := lookupInterface(name)
		if err != nil {
			return nil, err
		}
		t.ChargingInterfaceTypes = append(t.ChargingInterfaceTypes, it)
	}
	return t, nil
}

func vehicleProfile(name string, vp simparams.VehicleTypeParams) scheduling.VehicleTypeProfile {
	usable := vp.Battery.CapacityMaxKWh * (vp.Battery.SocMax - vp.Battery.SocMin) * vp.Battery.SoH
	return scheduling.VehicleTypeProfile{
		Name:                        name,
		TractionConsumptionKWhPerKm: vp.TractionConsumptionKWhPerKm,
		AuxPowerKW:                  vp.AuxPowerKW,
		UsableCapacityKWh:           usable,
	}
}

// Run dispatches one task per duty — each waits until its pull-out
// departure, requests a vehicle from the depot, drives the duty, and
// returns the vehicle — then drains the kernel and assembles the
// evaluation record (spec.md §4.10).
func (f *Facade) Run() (*EvaluationRecord, error) {
	f.rec = newRecorder(f.kernel, f.network.All())

	results := make([]*VehicleRecord, len(f.duties))
	var runErr error

	for i, duty := range f.duties {
		i, duty := i, duty
		f.kernel.Process(duty.ID, func(p *kernel.Process) error {
			if wait := duty.DepartureS() - p.Now(); wait > 0 {
				if err := p.Timeout(wait); err != nil {
					return err
				}
			}

			rangeKm := duty.DistanceKm()
			v, err := f.dep.RequestVehicle(p, duty.VehicleType, rangeKm)
			if err != nil {
				f.log.Error("requesting vehicle failed", zap.String("duty", duty.ID), zap.Error(err))
				if runErr == nil {
					runErr = err
				}
				return err
			}

			trips, err := f.drv.Drive(p, v, duty)
			results[i] = &VehicleRecord{VehicleID: v.ID, DutyID: duty.ID, Trips: trips}
			f.dep.ReturnVehicle(p, v)
			if err != nil {
				f.log.Error("driving duty failed", zap.String("duty", duty.ID), zap.Error(err))
				if runErr == nil {
					runErr = err
				}
			}
			return err
		})
	}

	f.kernel.Run(f.runUntilS)

	ev := &EvaluationRecord{Facilities: f.rec.finalize()}
	for i, r := range results {
		if r == nil {
			continue
		}
		ev.Vehicles = append(ev.Vehicles, *r)
		for _, t := range r.Trips {
			ev.TotalDistanceKm += t.DistanceKm
			ev.TotalEnergyKWh += t.DepartureEnergyKWh - t.ArrivalEnergyKWh
		}
		duty := f.duties[i]
		ev.TotalDriverTimeS += duty.ArrivalS() - duty.DepartureS()
	}
	return ev, runErr
}
