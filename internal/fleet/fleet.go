// Package fleet is the vehicle-type registry and factory a depot creates
// vehicles from (spec.md §4.7's "fleet.create_vehicle"), grounded on
// original_source/eflips/vehicle.py's Fleet.create_vehicle.
package fleet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
)

// Fleet holds the run's vehicle type catalogue and assigns each created
// vehicle a unique, stable ID.
type Fleet struct {
	k     *kernel.Kernel
	log   *zap.Logger
	types map[string]*vehicle.Type

	nextID  int
	Created []*vehicle.Vehicle
}

// New builds a Fleet from a vehicle type catalogue (spec.md §6
// `vehicle_params.<type>.*`, one entry per type name).
func New(k *kernel.Kernel, log *zap.Logger, types []*vehicle.Type) *Fleet {
	if log == nil {
		log = zap.NewNop()
	}
	byName := make(map[string]*vehicle.Type, len(types))
	for _, t := range types {
		byName[t.Name] = t
	}
	return &Fleet{k: k, log: log, types: byName}
}

// Type looks up a registered vehicle type by name.
func (f *Fleet) Type(name string) (*vehicle.Type, bool) {
	t, ok := f.types[name]
	return t, ok
}

// CreateVehicle builds a new vehicle of typeName at location, assigning it
// the next sequential ID. Returns an error if typeName is not registered.
func (f *Fleet) CreateVehicle(typeName string, location grid.Point) (*vehicle.Vehicle, error) {
	t, ok := f.types[typeName]
	if !ok {
		return nil, fmt.Errorf("fleet: unknown vehicle type %q", typeName)
	}
	f.nextID++
	id := fmt.Sprintf("%s-%d", typeName, f.nextID)
	v := vehicle.New(f.k, f.log, id, t, location)
	f.Created = append(f.Created, v)
	f.log.Debug("created vehicle", zap.String("id", id), zap.String("type", typeName))
	return v, nil
}
