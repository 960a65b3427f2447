package scheduling

import "sort"

// concatenate implements spec.md §4.8's optional concatenation phase: two
// duties of the same vehicle type, where one's pull-in location can reach
// the other's pull-out location within MaxDeadheadingDurationS, are merged
// into a single duty connected by an inter-duty deadhead instead of each
// separately returning to and leaving from the depot. Merging repeats
// until a full pass finds nothing left to merge.
func (g *Generator) concatenate(duties []*ScheduleNode) []*ScheduleNode {
	for {
		merged, changed := g.concatenatePass(duties)
		duties = merged
		if !changed {
			return duties
		}
	}
}

func (g *Generator) concatenatePass(duties []*ScheduleNode) ([]*ScheduleNode, bool) {
	sort.Slice(duties, func(i, j int) bool { return duties[i].DepartureS() < duties[j].DepartureS() })

	used := make([]bool, len(duties))
	var out []*ScheduleNode
	changed := false

	for i, a := range duties {
		if used[i] {
			continue
		}
		merged := a
		for j := i + 1; j < len(duties); j++ {
			if used[j] || duties[j].VehicleType != merged.VehicleType {
				continue
			}
			candidate, ok := g.tryMerge(merged, duties[j])
			if !ok {
				continue
			}
			merged = candidate
			used[j] = true
			changed = true
		}
		out = append(out, merged)
	}
	return out, changed
}

// tryMerge attempts to append b's duty onto the end of a's in place of a's
// pull-in and b's pull-out. If both land at the same grid point, no
// deadhead trip is inserted at all — the gap becomes a plain dwell on a's
// last passenger trip (spec.md §8 scenario 5's "concatenated into one duty
// with a 15-minute dwell and no deadhead trip"). Otherwise a deadhead trip
// bridges the two locations, with the leftover gap (after its travel time)
// becoming the dwell before b's first passenger trip departs. Fails if the
// gap is negative, the deadhead can't be driven in time, the idle+travel
// window exceeds MaxDeadheadingDurationS, or the merged duty's capacity
// trace goes negative.
func (g *Generator) tryMerge(a, b *ScheduleNode) (*ScheduleNode, bool) {
	aLast := a.Trips[len(a.Trips)-1]
	if aLast.Type != Deadhead {
		return nil, false
	}
	aLastPassenger := a.Trips[len(a.Trips)-2]
	bFirstPassenger := b.Trips[1]

	gapS := bFirstPassenger.DepartureS() - aLastPassenger.ArrivalS()
	if gapS < 0 || gapS > g.params.MaxDeadheadingDurationS {
		return nil, false
	}

	profile, ok := g.profiles[a.VehicleType]
	if !ok {
		return nil, false
	}

	merged := &ScheduleNode{ID: a.ID, VehicleType: a.VehicleType}
	if aLastPassenger.Destination().ID == bFirstPassenger.Origin().ID {
		relinked := *aLastPassenger
		relinkedLegs := append([]*LegNode(nil), aLastPassenger.Legs...)
		lastLeg := *relinkedLegs[len(relinkedLegs)-1]
		lastLeg.PauseS = gapS
		relinkedLegs[len(relinkedLegs)-1] = &lastLeg
		relinked.Legs = relinkedLegs

		merged.Trips = append(merged.Trips, a.Trips[:len(a.Trips)-2]...)
		merged.Trips = append(merged.Trips, &relinked)
		merged.Trips = append(merged.Trips, b.Trips[1:]...)
	} else {
		dh, err := g.deadheadSegment(aLastPassenger.Destination(), bFirstPassenger.Origin(), g.params.DefaultDeadheadTripDistanceKm, g.params.DefaultDeadheadTripVelocityKmh)
		if err != nil || dh.durationS > gapS {
			return nil, false
		}
		dh.departureS = aLastPassenger.ArrivalS()
		dh.id = aLast.ID

		node := g.deadheadTripNode(dh, a.VehicleType)
		node.Legs[0].PauseS = gapS - dh.durationS

		merged.Trips = append(merged.Trips, a.Trips[:len(a.Trips)-1]...)
		merged.Trips = append(merged.Trips, node)
		merged.Trips = append(merged.Trips, b.Trips[1:]...)
	}

	if g.minCapacityOf(merged, profile) < 0 {
		return nil, false
	}
	return merged, true
}

// minCapacityOf replays the merged duty's whole trace to confirm the
// battery never goes negative across the join.
func (g *Generator) minCapacityOf(s *ScheduleNode, profile VehicleTypeProfile) float64 {
	var segs []traceSegment
	for _, trip := range s.Trips {
		for _, leg := range trip.Legs {
			segs = append(segs, traceSegment{distanceKm: leg.DistanceKm(), drivingDurationS: leg.DrivingDurationS()})
			if leg.PauseS > 0 {
				segs = append(segs, traceSegment{
					dwellS:     leg.PauseS,
					chargeable: g.chargingLocations[leg.Destination().ID],
				})
			}
		}
	}
	min, _ := g.traceCapacity(profile, segs)
	return min
}
