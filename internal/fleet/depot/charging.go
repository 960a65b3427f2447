package depot

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
)

// Network resolves the depot's location to the charging facilities parked
// vehicles can use, satisfied by *facility.Network.
type Network interface {
	AtPoint(locationID string) map[string]interfacectl.Facility
}

// chargeEntry tracks a parked vehicle's charge task so a later request can
// interrupt it mid-charge (spec.md §4.7's interrupt-charging policy).
type chargeEntry struct {
	vehicle *vehicle.Vehicle
	task    *kernel.Task
}

// Charging is spec.md §4.7's DepotWithCharging: a pool of vehicles moving
// through in_service -> charging -> ready, where a request first looks in
// ready, then — if InterruptCharging is set — in charging for a vehicle
// whose estimated remaining range already covers the request, and only
// creates a new vehicle as a last resort.
type Charging struct {
	k        *kernel.Kernel
	log      *zap.Logger
	location grid.Point
	fleet    Fleet
	network  Network

	DeadTimeBeforeS   int64
	DeadTimeAfterS    int64
	InterruptCharging bool

	inService map[*vehicle.Vehicle]bool
	charging  []*chargeEntry
	ready     []*vehicle.Vehicle
}

// NewCharging builds a DepotWithCharging at location.
func NewCharging(k *kernel.Kernel, log *zap.Logger, location grid.Point, fleet Fleet, network Network, deadTimeBeforeS, deadTimeAfterS int64, interruptCharging bool) *Charging {
	if log == nil {
		log = zap.NewNop()
	}
	return &Charging{
		k:                 k,
		log:               log,
		location:          location,
		fleet:             fleet,
		network:           network,
		DeadTimeBeforeS:   deadTimeBeforeS,
		DeadTimeAfterS:    deadTimeAfterS,
		InterruptCharging: interruptCharging,
		inService:         make(map[*vehicle.Vehicle]bool),
	}
}

func (d *Charging) Location() grid.Point { return d.location }

// NumReady, NumCharging, NumInService report queue occupancy, grounded on
// DepotAbstract's num_vehicles_* properties (spec.md §4.10's per-depot
// vehicle counts over time).
func (d *Charging) NumReady() int     { return len(d.ready) }
func (d *Charging) NumCharging() int  { return len(d.charging) }
func (d *Charging) NumInService() int { return len(d.inService) }

// RequestVehicle searches ready for a matching type; on miss, if
// InterruptCharging is set, searches charging for a matching type whose
// estimated remaining range already covers requiredRangeKm and interrupts
// its charge task; on miss, creates a new vehicle (spec.md §4.7).
func (d *Charging) RequestVehicle(p *kernel.Process, typeName string, requiredRangeKm float64) (*vehicle.Vehicle, error) {
	if idx := d.findReady(typeName); idx >= 0 {
		v := d.ready[idx]
		d.ready = append(d.ready[:idx], d.ready[idx+1:]...)
		d.inService[v] = true
		d.log.Debug("vehicle entering service from ready", zap.String("vehicle", v.ID))
		return v, nil
	}

	if d.InterruptCharging {
		if idx := d.findInterruptible(typeName, requiredRangeKm); idx >= 0 {
			entry := d.charging[idx]
			d.charging = append(d.charging[:idx], d.charging[idx+1:]...)
			if err := d.k.Interrupt(entry.task, "vehicle_requested"); err != nil && !errors.Is(err, kernel.ErrTaskFinished) {
				d.log.Warn("failed to interrupt charging vehicle", zap.String("vehicle", entry.vehicle.ID), zap.Error(err))
			}
			d.inService[entry.vehicle] = true
			d.log.Debug("vehicle entering service from charging", zap.String("vehicle", entry.vehicle.ID))
			return entry.vehicle, nil
		}
	}

	v, err := d.fleet.CreateVehicle(typeName, d.location)
	if err != nil {
		return nil, err
	}
	d.inService[v] = true
	d.log.Debug("created vehicle for service", zap.String("vehicle", v.ID))
	return v, nil
}

func (d *Charging) findReady(typeName string) int {
	for i, v := range d.ready {
		if v.Type.Name == typeName {
			return i
		}
	}
	return -1
}

func (d *Charging) findInterruptible(typeName string, requiredRangeKm float64) int {
	for i, entry := range d.charging {
		if entry.vehicle.Type.Name == typeName && entry.vehicle.RangeEstimateKm() >= requiredRangeKm {
			return i
		}
	}
	return -1
}

// ReturnVehicle moves v from in_service into the charging queue and starts
// its charge task (dead_time_before -> charge_full -> dead_time_after ->
// ready, spec.md §4.7).
func (d *Charging) ReturnVehicle(p *kernel.Process, v *vehicle.Vehicle) {
	if d.inService[v] {
		delete(d.inService, v)
		d.log.Debug("vehicle returned", zap.String("vehicle", v.ID))
	} else {
		d.log.Warn("returning unknown vehicle", zap.String("vehicle", v.ID))
	}

	entry := &chargeEntry{vehicle: v}
	entry.task = d.k.Process("depot-charge", func(cp *kernel.Process) error {
		return d.runCharge(cp, v)
	})
	d.charging = append(d.charging, entry)
}

// runCharge implements the dead_time_before -> charge_full -> dead_time_after
// sequence. If no matching facility exists at the depot, the vehicle simply
// waits out both dead times without connecting anywhere.
func (d *Charging) runCharge(p *kernel.Process, v *vehicle.Vehicle) error {
	if err := p.Timeout(d.DeadTimeBeforeS); err != nil {
		return err
	}

	available := d.network.AtPoint(d.location.ID)
	if iface, fac, ok := v.Primary.AvailableFacilities(available); ok {
		params := interfacectl.ScheduleParams{
			TryCharging:      true,
			QueueForCharging: true,
			ChargeFull:       true,
			ReleaseWhenFull:  false,
		}
		onConnect := func() { v.Primary.ConnectInterface(iface, false) }
		onDisconnect := func() { v.Primary.DisconnectInterface() }
		if err := interfacectl.Run(d.k, p, iface, fac, 0, params, true, v.Primary.Storage, onConnect, onDisconnect); err != nil {
			return err
		}
	}

	if err := p.Timeout(d.DeadTimeAfterS); err != nil {
		return err
	}

	d.moveToReady(v)
	return nil
}

// moveToReady removes v from the charging queue and appends it to ready.
// If v is no longer in the charging queue (its task was interrupted by
// RequestVehicle, which removes the entry before interrupting), this is a
// no-op: the vehicle has already gone straight into service, bypassing
// ready (spec.md §4.7 "bypasses ready and goes straight to in_service").
func (d *Charging) moveToReady(v *vehicle.Vehicle) {
	for i, entry := range d.charging {
		if entry.vehicle == v {
			d.charging = append(d.charging[:i], d.charging[i+1:]...)
			d.ready = append(d.ready, v)
			d.log.Debug("vehicle ready for service", zap.String("vehicle", v.ID))
			return
		}
	}
}

var _ Depot = (*Charging)(nil)
