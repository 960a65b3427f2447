package scheduling

import (
	"testing"

	"github.com/nexabus/evsim/internal/grid"
)

func TestConcatenateMergesAdjacentDutiesAtTheSameLocationWithNoDeadhead(t *testing.T) {
	gr := grid.New()
	depot := point("depot")
	a, x, z := point("A"), point("X"), point("Z")

	params := baseParams()
	params.Deadheading = true
	params.MaxDeadheadingDurationS = 1800

	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: x, DepartureS: 3600, DurationS: 600, DistanceKm: 5},
		{ID: "t2", Line: "2", VehicleType: "bus", Origin: x, Destination: z, DepartureS: 5100, DurationS: 600, DistanceKm: 5},
	}

	gen := NewGenerator(gr, nil, params, depot, []VehicleTypeProfile{busProfile()}, nil)
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(duties) != 1 {
		t.Fatalf("expected the two duties to merge into one, got %d", len(duties))
	}

	duty := duties[0]
	if len(duty.Trips) != 4 {
		t.Fatalf("expected pull-out + t1 + t2 + pull-in with no deadhead trip between them, got %d trips", len(duty.Trips))
	}
	if duty.Trips[1].ID != "t1" || duty.Trips[2].ID != "t2" {
		t.Fatalf("expected t1 then t2 directly, got %s then %s", duty.Trips[1].ID, duty.Trips[2].ID)
	}
	if pause := duty.Trips[1].PauseS(); pause != 900 {
		t.Fatalf("expected a 900s dwell standing in for the deadhead, got %d", pause)
	}
	if err := CheckMonotonic(duty); err != nil {
		t.Fatalf("merged duty violates monotonicity: %v", err)
	}
	if gen.minCapacityOf(duty, busProfile()) < 0 {
		t.Fatalf("merged duty's capacity trace went negative")
	}
}
