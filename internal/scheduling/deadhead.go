package scheduling

import (
	"fmt"
	"math"

	"github.com/nexabus/evsim/internal/grid"
)

// deadhead is an invented empty move: a pull-out, a pull-in, or an
// inter-duty repositioning trip the generator synthesises rather than
// reads off the timetable.
type deadhead struct {
	id                  string
	origin, destination grid.Point
	distanceKm          float64
	durationS           int64
	departureS          int64
}

// deadheadSegment sizes a deadhead between origin and destination: the
// grid's shortest direct segment if one exists, else the distance oracle,
// else defaultDistanceKm, converted to a duration at defaultVelocityKmh
// (spec.md §4.8 "size pull-out/pull-in legs from the grid, falling back to
// the distance oracle, falling back again to a default distance and
// velocity"). The caller fills in departureS afterward, since that depends
// on which side of the move is fixed (arrival for a pull-out, departure
// for a pull-in).
func (g *Generator) deadheadSegment(origin, destination grid.Point, defaultDistanceKm, defaultVelocityKmh float64) (deadhead, error) {
	if defaultVelocityKmh <= 0 {
		return deadhead{}, fmt.Errorf("scheduling: default deadhead velocity must be positive")
	}

	distanceKm := defaultDistanceKm
	if seg, ok := g.grid.ShortestSegment(origin.ID, destination.ID); ok {
		distanceKm = seg.DistanceKm
	} else if g.oracle != nil {
		if km, ok := g.oracle.Distance(origin.ID, destination.ID); ok {
			distanceKm = km
		}
	}

	g.deadheadSeq++
	return deadhead{
		id:          fmt.Sprintf("deadhead-%d", g.deadheadSeq),
		origin:      origin,
		destination: destination,
		distanceKm:  distanceKm,
		durationS:   int64(math.Ceil(distanceKm / defaultVelocityKmh * 3600)),
	}, nil
}

func (g *Generator) deadheadTripNode(d deadhead, vehicleType string) *TripNode {
	seg := &SegmentNode{
		GridSegment: grid.Segment{
			ID: d.id, Origin: d.origin, Destination: d.destination, DistanceKm: d.distanceKm,
		},
		ScheduledDepartureS: d.departureS,
		DurationS:           d.durationS,
	}
	return &TripNode{
		ID: d.id, Type: Deadhead, VehicleType: vehicleType,
		Legs: []*LegNode{{Segments: []*SegmentNode{seg}}},
	}
}

func (g *Generator) passengerTripNode(t PassengerTrip, delayS, pauseS int64) *TripNode {
	seg := &SegmentNode{
		GridSegment: grid.Segment{
			ID: t.ID, Origin: t.Origin, Destination: t.Destination, DistanceKm: t.DistanceKm,
		},
		ScheduledDepartureS: t.DepartureS,
		DurationS:           t.DurationS,
		DelayS:              delayS,
	}
	return &TripNode{
		ID: t.ID, Type: Passenger, Line: t.Line, VehicleType: t.VehicleType,
		Legs: []*LegNode{{Segments: []*SegmentNode{seg}, PauseS: pauseS}},
	}
}
