// Generator builds vehicle duties from a sorted timetable of passenger
// trips by the greedy single-depot algorithm spec.md §4.8 describes,
// grounded on original_source/eflips/schedule.py's generate_schedule: pop
// the earliest unassigned trip, extend the duty forward with whatever
// matching trip is ready next at the vehicle's current location, close it
// with a pull-in once nothing fits, then repeat until the timetable is
// exhausted.
package scheduling

import (
	"fmt"
	"math"
	"sort"

	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/simparams"
)

// PassengerTrip is one row of the input timetable the generator consumes.
type PassengerTrip struct {
	ID          string
	Line        string
	VehicleType string
	Origin      grid.Point
	Destination grid.Point
	DepartureS  int64
	DurationS   int64
	DistanceKm  float64
	DelayS      int64
}

func (t PassengerTrip) arrivalS() int64 { return t.DepartureS + t.DurationS }

// VehicleTypeProfile distils the subset of a vehicle type's parameters the
// generator's capacity trace and range checks need, grounded on
// simparams.VehicleTypeParams/BatteryConfig — the generator works off a
// flat profile rather than the full vehicle package so it doesn't need a
// live kernel or storage subsystem to plan a timetable.
type VehicleTypeProfile struct {
	Name                        string
	TractionConsumptionKWhPerKm float64
	AuxPowerKW                  float64
	// UsableCapacityKWh is the traction battery's plannable window:
	// (soc_max - soc_min) * capacity_max * soh.
	UsableCapacityKWh float64
}

// RangeKm is the distance the profile can cover on a full plannable charge.
func (p VehicleTypeProfile) RangeKm() float64 {
	if p.TractionConsumptionKWhPerKm <= 0 {
		return math.Inf(1)
	}
	return p.UsableCapacityKWh / p.TractionConsumptionKWhPerKm
}

// Generator holds everything the duty-building loop needs beyond the
// timetable itself: the grid and distance oracle to size deadheads, the
// scheduler's tunables, the depot location, and which grid points offer
// opportunity charging.
type Generator struct {
	grid   *grid.Grid
	oracle grid.DistanceOracle
	params simparams.SchedulerParams
	depot  grid.Point

	profiles          map[string]VehicleTypeProfile
	chargingLocations map[string]bool

	deadheadSeq int
}

// NewGenerator builds a Generator. chargingLocationIDs names the grid
// points where opportunity charging is available (spec.md §4.8 "If the
// origin is a charging location for this line").
func NewGenerator(g *grid.Grid, oracle grid.DistanceOracle, params simparams.SchedulerParams, depot grid.Point, profiles []VehicleTypeProfile, chargingLocationIDs []string) *Generator {
	byName := make(map[string]VehicleTypeProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}
	chargeable := make(map[string]bool, len(chargingLocationIDs))
	for _, id := range chargingLocationIDs {
		chargeable[id] = true
	}
	return &Generator{
		grid: g, oracle: oracle, params: params, depot: depot,
		profiles: byName, chargingLocations: chargeable,
	}
}

// Generate runs the greedy algorithm over timetable and returns one
// ScheduleNode per duty. If params.Deadheading is set, adjacent duties are
// concatenated afterward wherever a feasible inter-duty deadhead exists
// (spec.md §4.8's optional concatenation phase).
func (g *Generator) Generate(timetable []PassengerTrip) ([]*ScheduleNode, error) {
	unassigned := append([]PassengerTrip(nil), timetable...)
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i].DepartureS < unassigned[j].DepartureS })

	var duties []*ScheduleNode
	for len(unassigned) > 0 {
		duty, err := g.buildDuty(len(duties)+1, &unassigned)
		if err != nil {
			return nil, err
		}
		duties = append(duties, duty)
	}

	if g.params.Deadheading {
		duties = g.concatenate(duties)
	}
	return duties, nil
}

// attached is one passenger trip riding in the duty under construction,
// plus the dwell (in seconds) after it before the next trip (or the
// pull-in) departs.
type attached struct {
	trip   PassengerTrip
	pauseS int64
	delayS int64
}

// appliedDelayS decides whether t's recorded delay actually gets injected,
// per spec.md §4.8's delay injection modes: "all" injects every trip's
// delay, "charging_only" injects only at stops offering opportunity
// charging, "selected_only" injects only for the configured trip IDs. A
// delay below DelayThresholdS never counts, in any mode.
func (g *Generator) appliedDelayS(t PassengerTrip, chargeableHere bool) int64 {
	if !g.params.AddDelays {
		return 0
	}
	switch g.params.DelayMode {
	case "charging_only":
		if !chargeableHere {
			return 0
		}
	case "selected_only":
		selected := false
		for _, id := range g.params.DelayedTripIDs {
			if id == t.ID {
				selected = true
				break
			}
		}
		if !selected {
			return 0
		}
	}
	d := t.DelayS - g.params.DelayThresholdS
	if d < 0 {
		return 0
	}
	return d
}

func (g *Generator) buildDuty(n int, unassigned *[]PassengerTrip) (*ScheduleNode, error) {
	first := (*unassigned)[0]
	*unassigned = (*unassigned)[1:]

	profile, ok := g.profiles[first.VehicleType]
	if !ok {
		return nil, fmt.Errorf("scheduling: unknown vehicle type %q", first.VehicleType)
	}

	pullOut, err := g.deadheadSegment(g.depot, first.Origin, g.params.DefaultDepotTripDistanceKm, g.params.DefaultDepotTripVelocityKmh)
	if err != nil {
		return nil, err
	}
	pullOut.departureS = first.DepartureS - pullOut.durationS

	segs := []traceSegment{{distanceKm: pullOut.distanceKm, drivingDurationS: pullOut.durationS}}
	trips := []attached{{trip: first}}

	cur := first
	for {
		_, curKWh := g.traceCapacity(profile, segs)

		chargeableHere := g.chargingLocations[cur.Destination.ID]
		delayS := g.appliedDelayS(cur, chargeableHere)
		trips[len(trips)-1].delayS = delayS
		effectiveArrival := cur.arrivalS() + delayS

		requiredChargeS := int64(0)
		if chargeableHere {
			requiredChargeS = g.chargeDurationS(curKWh, profile.UsableCapacityKWh)
		}
		minDwell := g.params.MinPauseDurationS
		if requiredChargeS > minDwell {
			minDwell = requiredChargeS
		}

		next, idx, found := g.findNext(cur, *unassigned, profile, effectiveArrival+minDwell)
		if !found {
			break
		}
		pauseS := next.DepartureS - effectiveArrival
		if pauseS > g.params.MaxPauseDurationS {
			break
		}

		candidate := append(append([]traceSegment{}, segs...),
			traceSegment{dwellS: pauseS, chargeable: chargeableHere},
			traceSegment{distanceKm: next.DistanceKm, drivingDurationS: next.DurationS},
		)
		minCap, _ := g.traceCapacity(profile, candidate)
		if minCap < 0 {
			break
		}
		if g.params.UseStaticRange && next.DistanceKm+cumulativeDistance(segs) > profile.RangeKm() && !(chargeableHere && pauseS >= requiredChargeS && requiredChargeS > 0) {
			break
		}

		trips[len(trips)-1].pauseS = pauseS
		trips = append(trips, attached{trip: next})
		segs = candidate
		*unassigned = append(append([]PassengerTrip{}, (*unassigned)[:idx]...), (*unassigned)[idx+1:]...)
		cur = next
	}

	pullIn, err := g.deadheadSegment(cur.Destination, g.depot, g.params.DefaultDepotTripDistanceKm, g.params.DefaultDepotTripVelocityKmh)
	if err != nil {
		return nil, err
	}
	pullIn.departureS = cur.arrivalS() + trips[len(trips)-1].delayS
	segs = append(segs, traceSegment{distanceKm: pullIn.distanceKm, drivingDurationS: pullIn.durationS})
	minCap, _ := g.traceCapacity(profile, segs)

	duty := &ScheduleNode{ID: fmt.Sprintf("duty-%d", n), VehicleType: first.VehicleType}
	duty.Trips = append(duty.Trips, g.deadheadTripNode(pullOut, first.VehicleType))
	for _, a := range trips {
		duty.Trips = append(duty.Trips, g.passengerTripNode(a.trip, a.delayS, a.pauseS))
	}
	duty.Trips = append(duty.Trips, g.deadheadTripNode(pullIn, first.VehicleType))

	if minCap < 0 {
		return nil, fmt.Errorf("scheduling: duty %s cannot reach the depot without falling below empty (min capacity %.1fkWh)", duty.ID, minCap)
	}
	return duty, nil
}

// findNext locates the earliest trip in unassigned sharing cur's
// destination and the profile's vehicle type (and, unless MixLinesAtStop
// is set, cur's line too) departing no earlier than minDepartureS. Only
// the first such candidate is considered: if its gap exceeds
// MaxPauseDurationS the duty closes rather than skipping ahead to a later
// one (spec.md §4.8 "If found within max_pause_duration, attach it;
// otherwise close the duty").
func (g *Generator) findNext(cur PassengerTrip, unassigned []PassengerTrip, profile VehicleTypeProfile, minDepartureS int64) (PassengerTrip, int, bool) {
	for i, t := range unassigned {
		if t.Origin.ID != cur.Destination.ID || t.VehicleType != profile.Name {
			continue
		}
		if !g.params.MixLinesAtStop && t.Line != cur.Line {
			continue
		}
		if t.DepartureS < minDepartureS {
			continue
		}
		return t, i, true
	}
	return PassengerTrip{}, -1, false
}

// chargeDurationS applies spec.md §4.8's charge-duration formula:
// ((nominal - current) / (charge_power - pause_aux_power) * 3600 + dead_time)
// * (1 - reduce_factor), rounded up to the next whole minute.
func (g *Generator) chargeDurationS(currentKWh, nominalKWh float64) int64 {
	denom := g.params.ChargePowerKW - g.params.PauseAuxPowerKW
	if denom <= 0 || currentKWh >= nominalKWh {
		return 0
	}
	seconds := (nominalKWh-currentKWh)/denom*3600 + float64(g.params.DeadTimeS)
	seconds *= 1 - g.params.ReduceFactor
	if seconds <= 0 {
		return 0
	}
	return int64(math.Ceil(seconds/60)) * 60
}

// traceSegment is one leg of the capacity trace: a driven distance/duration
// followed by an optional dwell that either opportunity-charges or drains
// the auxiliary load.
type traceSegment struct {
	distanceKm       float64
	drivingDurationS int64
	dwellS           int64
	chargeable       bool
}

// traceCapacity walks segs from a full battery and returns the lowest
// capacity reached and the capacity remaining at the end (spec.md §4.8's
// capacity trace): driving drains distance*consumption + time*aux_power;
// a dwell either opportunity-charges at charge_power or drains at
// pause_aux_power.
func (g *Generator) traceCapacity(profile VehicleTypeProfile, segs []traceSegment) (minKWh, currentKWh float64) {
	capacity := profile.UsableCapacityKWh
	min := capacity
	for _, s := range segs {
		capacity -= s.distanceKm*profile.TractionConsumptionKWhPerKm + float64(s.drivingDurationS)/3600*profile.AuxPowerKW
		if capacity < min {
			min = capacity
		}
		if s.dwellS > 0 {
			if s.chargeable {
				capacity = math.Min(capacity+float64(s.dwellS)/3600*g.params.ChargePowerKW, profile.UsableCapacityKWh)
			} else {
				capacity -= float64(s.dwellS) / 3600 * g.params.PauseAuxPowerKW
			}
			if capacity < min {
				min = capacity
			}
		}
	}
	return min, capacity
}

func cumulativeDistance(segs []traceSegment) float64 {
	var total float64
	for _, s := range segs {
		total += s.distanceKm
	}
	return total
}
