package scheduling

import (
	"testing"

	"github.com/nexabus/evsim/internal/grid"
)

func point(id string) grid.Point { return grid.Point{ID: id, Name: id, Type: "stop"} }

func segment(origin, dest string, distanceKm float64) grid.Segment {
	return grid.Segment{ID: origin + "-" + dest, Origin: point(origin), Destination: point(dest), DistanceKm: distanceKm}
}

func TestLegAggregatesSegments(t *testing.T) {
	leg := &LegNode{
		Segments: []*SegmentNode{
			{GridSegment: segment("A", "B", 5), ScheduledDepartureS: 0, DurationS: 300},
			{GridSegment: segment("B", "C", 3), ScheduledDepartureS: 300, DurationS: 180},
		},
		PauseS: 60,
	}
	if got := leg.DistanceKm(); got != 8 {
		t.Fatalf("expected distance 8, got %v", got)
	}
	if got := leg.DrivingDurationS(); got != 480 {
		t.Fatalf("expected driving duration 480, got %v", got)
	}
	if got := leg.ArrivalS(); got != 480 {
		t.Fatalf("expected arrival 480, got %v", got)
	}
	if got := leg.Destination().ID; got != "C" {
		t.Fatalf("expected destination C, got %v", got)
	}
}

func TestCheckMonotonicDetectsOverlap(t *testing.T) {
	legA := &LegNode{Segments: []*SegmentNode{{GridSegment: segment("A", "B", 5), ScheduledDepartureS: 0, DurationS: 300}}, PauseS: 60}
	legB := &LegNode{Segments: []*SegmentNode{{GridSegment: segment("B", "C", 5), ScheduledDepartureS: 200, DurationS: 300}}, PauseS: 0}

	duty := &ScheduleNode{
		ID: "duty-1",
		Trips: []*TripNode{
			{ID: "t1", Type: Passenger, Legs: []*LegNode{legA}},
			{ID: "t2", Type: Passenger, Legs: []*LegNode{legB}},
		},
	}
	if err := CheckMonotonic(duty); err == nil {
		t.Fatalf("expected a monotonicity violation (leg B departs before leg A arrives)")
	}

	legB.Segments[0].ScheduledDepartureS = 360
	if err := CheckMonotonic(duty); err != nil {
		t.Fatalf("unexpected error after fixing departure: %v", err)
	}
}
