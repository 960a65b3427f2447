package grid

// DistanceOracle answers distance (km) queries between two points when
// the grid itself holds no direct segment
// — the schedule generator's deadhead sizing (spec.md §4.8) falls back to
// this before falling back again to a hard-coded default.
type DistanceOracle interface {
	Distance(origin, destination string) (km float64, ok bool)
}

// StaticOracle is a fixed lookup table, used in tests and for grids fully
// known ahead of time. Production deployments back DistanceOracle with
// internal/adapter/cache, which fronts a routing service over the network.
type StaticOracle struct {
	distances map[[2]string]float64
}

// NewStaticOracle builds an empty oracle keyed by origin/destination pair;
// distances are added with Set.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{distances: make(map[[2]string]float64)}
}

// Set records the distance for an origin/destination pair.
func (o *StaticOracle) Set(origin, destination string, km float64) {
	o.distances[[2]string{origin, destination}] = km
}

// Distance implements DistanceOracle.
func (o *StaticOracle) Distance(origin, destination string) (float64, bool) {
	km, ok := o.distances[[2]string{origin, destination}]
	return km, ok
}
