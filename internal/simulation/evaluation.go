package simulation

import (
	"sort"

	"github.com/nexabus/evsim/internal/facility"
	"github.com/nexabus/evsim/internal/fleet/driver"
	"github.com/nexabus/evsim/internal/kernel"
)

// OccupationSample is one recorded change in a facility's slot occupation.
type OccupationSample struct {
	TimeS    int64
	InUse    int
	Capacity int
}

// FacilityRecord accumulates one facility's occupation time series over a
// run (spec.md §4.10 "per-facility occupation series").
type FacilityRecord struct {
	FacilityID string
	Samples    []OccupationSample
}

// VehicleRecord is one vehicle's full driving record across the duty it
// was dispatched on.
type VehicleRecord struct {
	VehicleID string
	DutyID    string
	Trips     []driver.TripRecord
}

// EvaluationRecord is a completed run's full output (spec.md §4.10): per-
// vehicle energy logs, per-facility occupation series, and aggregate
// energy/mileage/driver-hour totals. Depot vehicle counts over time are a
// facility occupation series like any other when the depot is a
// DepotWithCharging backed by the network; a SimpleDepot has no queues to
// sample.
type EvaluationRecord struct {
	Vehicles         []VehicleRecord
	Facilities       []FacilityRecord
	TotalEnergyKWh   float64
	TotalDistanceKm  float64
	TotalDriverTimeS int64
}

// recorder wires every facility's OnStateChange hook into a time-stamped
// occupation sample, appended at the kernel's current simulated time
// (spec.md §5 "state-change notifications execute synchronously in the
// firing task's context").
type recorder struct {
	k       *kernel.Kernel
	records []*FacilityRecord
	byID    map[string]*FacilityRecord
}

func newRecorder(k *kernel.Kernel, facilities []*facility.Facility) *recorder {
	sort.Slice(facilities, func(i, j int) bool { return facilities[i].ID < facilities[j].ID })

	r := &recorder{byID: make(map[string]*FacilityRecord, len(facilities))}
	r.k = k
	for _, f := range facilities {
		rec := &FacilityRecord{FacilityID: f.ID}
		r.records = append(r.records, rec)
		r.byID[f.ID] = rec

		f.OnStateChange(func() {
			rec.Samples = append(rec.Samples, OccupationSample{
				TimeS:    k.Now(),
				InUse:    f.InUse(),
				Capacity: f.Capacity,
			})
		})
	}
	return r
}

// finalize returns the accumulated per-facility records in a stable order.
func (r *recorder) finalize() []FacilityRecord {
	out := make([]FacilityRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = *rec
	}
	return out
}
