// Package depot implements the two depot variants spec.md §4.7 names:
// SimpleDepot, which hands out a freshly created vehicle on every request,
// and DepotWithCharging, which pools vehicles through in_service/charging/
// ready queues with an interrupt-charging policy. Grounded on
// original_source/eflips/simpleDepot.py's DepotAbstract/SimpleDepot/
// DepotWithCharging, and teacher's internal/service/reservation/service.go
// for the pending->active->released resource-lifecycle idiom the charging
// variant's three queues mirror.
package depot

import (
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
)

// Fleet is the vehicle factory a depot draws new vehicles from, satisfied
// by *fleet.Fleet.
type Fleet interface {
	CreateVehicle(typeName string, location grid.Point) (*vehicle.Vehicle, error)
}

// Depot is what a dispatcher needs: request a vehicle of a type for a
// duty of a given range, and return it once the duty ends.
type Depot interface {
	Location() grid.Point
	RequestVehicle(p *kernel.Process, typeName string, requiredRangeKm float64) (*vehicle.Vehicle, error)
	ReturnVehicle(p *kernel.Process, v *vehicle.Vehicle)
}

// Simple is spec.md §4.7's SimpleDepot: no pooling, no charging — every
// request creates a fresh vehicle, every return just forgets about it.
// Use this when only route simulation (not depot charging dynamics)
// matters.
type Simple struct {
	k        *kernel.Kernel
	log      *zap.Logger
	location grid.Point
	fleet    Fleet

	inService map[*vehicle.Vehicle]bool
}

// NewSimple builds a SimpleDepot at location.
func NewSimple(k *kernel.Kernel, log *zap.Logger, location grid.Point, fleet Fleet) *Simple {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simple{
		k:         k,
		log:       log,
		location:  location,
		fleet:     fleet,
		inService: make(map[*vehicle.Vehicle]bool),
	}
}

func (d *Simple) Location() grid.Point { return d.location }

// RequestVehicle always creates a new vehicle (requiredRangeKm is unused —
// a freshly created vehicle is always full).
func (d *Simple) RequestVehicle(p *kernel.Process, typeName string, requiredRangeKm float64) (*vehicle.Vehicle, error) {
	v, err := d.fleet.CreateVehicle(typeName, d.location)
	if err != nil {
		return nil, err
	}
	d.inService[v] = true
	d.log.Debug("requesting vehicle", zap.String("type", typeName), zap.String("vehicle", v.ID))
	return v, nil
}

// ReturnVehicle parks v; a vehicle not known to be in service is a warning,
// not a failure (spec.md §7 "Unknown facility return").
func (d *Simple) ReturnVehicle(p *kernel.Process, v *vehicle.Vehicle) {
	if !d.inService[v] {
		d.log.Warn("returning unknown vehicle", zap.String("vehicle", v.ID))
	}
	delete(d.inService, v)
}

var _ Depot = (*Simple)(nil)
