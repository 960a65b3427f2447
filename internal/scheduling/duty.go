// Package scheduling implements the trip tree (spec.md §3 "Trip tree", §9's
// node-protocol design note) and the greedy single-depot schedule generator
// (spec.md §4.8), grounded on original_source/eflips/schedule.py's
// Node/ScheduleNode/TripNode/LegNode hierarchy.
//
// Node times are plain simulated-clock seconds (the same int64 domain the
// kernel, storage and interface controller already use), not simtime.Time:
// a timetable's weekday+seconds-of-day departures are resolved against the
// run's base day into this domain once, by whatever builds the duty, so
// that every downstream consumer (the driver) can do plain arithmetic
// without re-deriving the base-day mapping.
package scheduling

import "github.com/nexabus/evsim/internal/grid"

// SegmentNode is one driven grid segment within a leg (spec.md §3
// "SegmentNode references a grid segment, a duration, and an optional
// delay").
type SegmentNode struct {
	GridSegment        grid.Segment
	ScheduledDepartureS int64
	DurationS           int64
	DelayS              int64
}

// ArrivalS is the segment's scheduled arrival, derived from its departure
// and duration.
func (s *SegmentNode) ArrivalS() int64 { return s.ScheduledDepartureS + s.DurationS }

// LegNode is a sequence of segments followed by a dwell (pause) at the
// destination (spec.md §3 "A LegNode owns a pause").
type LegNode struct {
	Segments []*SegmentNode
	PauseS   int64
}

// DepartureS is the leg's first segment's scheduled departure.
func (l *LegNode) DepartureS() int64 { return l.Segments[0].ScheduledDepartureS }

// ArrivalS is the leg's last segment's scheduled arrival.
func (l *LegNode) ArrivalS() int64 { return l.Segments[len(l.Segments)-1].ArrivalS() }

// DistanceKm sums the distance of every segment in the leg.
func (l *LegNode) DistanceKm() float64 {
	var total float64
	for _, s := range l.Segments {
		total += s.GridSegment.DistanceKm
	}
	return total
}

// DrivingDurationS sums the scheduled duration of every segment in the leg,
// excluding the post-leg pause.
func (l *LegNode) DrivingDurationS() int64 {
	var total int64
	for _, s := range l.Segments {
		total += s.DurationS
	}
	return total
}

// Origin is the grid point the leg's first segment departs from.
func (l *LegNode) Origin() grid.Point { return l.Segments[0].GridSegment.Origin }

// Destination is the grid point the leg's last segment arrives at — where
// the post-leg pause takes place.
func (l *LegNode) Destination() grid.Point {
	return l.Segments[len(l.Segments)-1].GridSegment.Destination
}

// TripType distinguishes a revenue passenger trip from an empty deadhead
// move (pull-out, pull-in, or inter-duty repositioning).
type TripType int

const (
	Passenger TripType = iota
	Deadhead
)

func (t TripType) String() string {
	if t == Deadhead {
		return "deadhead"
	}
	return "passenger"
}

// TripNode is one trip: a line/vehicle-type tag plus the legs that make it
// up (spec.md §3 "TripNode" — a Trip summarises its Leg children).
type TripNode struct {
	ID          string
	Type        TripType
	Line        string
	VehicleType string
	Legs        []*LegNode
}

// DepartureS is the trip's first leg's departure.
func (t *TripNode) DepartureS() int64 { return t.Legs[0].DepartureS() }

// ArrivalS is the trip's last leg's arrival.
func (t *TripNode) ArrivalS() int64 { return t.Legs[len(t.Legs)-1].ArrivalS() }

// DistanceKm sums every leg's distance.
func (t *TripNode) DistanceKm() float64 {
	var total float64
	for _, l := range t.Legs {
		total += l.DistanceKm()
	}
	return total
}

// Origin is the grid point the trip starts from.
func (t *TripNode) Origin() grid.Point { return t.Legs[0].Origin() }

// Destination is the grid point the trip ends at.
func (t *TripNode) Destination() grid.Point { return t.Legs[len(t.Legs)-1].Destination() }

// PauseS is the dwell after the trip's last leg (spec.md §3 "pause AT END
// of trip").
func (t *TripNode) PauseS() int64 { return t.Legs[len(t.Legs)-1].PauseS }

// ScheduleNode is a duty: one vehicle's full plan from pull-out to pull-in
// (spec.md §3 "a schedule is a tree... Schedule, Trip, Leg, Segment").
type ScheduleNode struct {
	ID          string
	VehicleType string
	Trips       []*TripNode
}

// DepartureS is the duty's first trip's departure.
func (s *ScheduleNode) DepartureS() int64 { return s.Trips[0].DepartureS() }

// ArrivalS is the duty's last trip's arrival.
func (s *ScheduleNode) ArrivalS() int64 { return s.Trips[len(s.Trips)-1].ArrivalS() }

// DistanceKm sums every trip's distance.
func (s *ScheduleNode) DistanceKm() float64 {
	var total float64
	for _, t := range s.Trips {
		total += t.DistanceKm()
	}
	return total
}

// PassengerTrips returns only the duty's revenue trips, in order.
func (s *ScheduleNode) PassengerTrips() []*TripNode {
	var out []*TripNode
	for _, t := range s.Trips {
		if t.Type == Passenger {
			out = append(out, t)
		}
	}
	return out
}
