package scheduling

import (
	"testing"

	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/simparams"
)

func busProfile() VehicleTypeProfile {
	return VehicleTypeProfile{
		Name:                        "bus",
		TractionConsumptionKWhPerKm: 1.2,
		AuxPowerKW:                  2,
		UsableCapacityKWh:           270, // (1.0-0.1)*300
	}
}

func baseParams() simparams.SchedulerParams {
	return simparams.SchedulerParams{
		MinPauseDurationS:       60,
		MaxPauseDurationS:       1800,
		MaxDeadheadingDurationS: 1800,
		DefaultDepotTripDistanceKm:     3,
		DefaultDepotTripVelocityKmh:    30,
		DefaultDeadheadTripDistanceKm:  3,
		DefaultDeadheadTripVelocityKmh: 30,
		PauseAuxPowerKW: 1,
		ChargePowerKW:   150,
		ReduceFactor:    0,
		DeadTimeS:       0,
	}
}

func TestGeneratorSingleTripDutyGetsPullOutAndPullIn(t *testing.T) {
	g := grid.New()
	depot := point("depot")
	a, b := point("A"), point("B")

	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: b, DepartureS: 3600, DurationS: 600, DistanceKm: 10},
	}

	gen := NewGenerator(g, nil, baseParams(), depot, []VehicleTypeProfile{busProfile()}, nil)
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(duties) != 1 {
		t.Fatalf("expected 1 duty, got %d", len(duties))
	}
	duty := duties[0]
	if len(duty.Trips) != 3 {
		t.Fatalf("expected pull-out + trip + pull-in, got %d trips", len(duty.Trips))
	}
	if duty.Trips[0].Type != Deadhead || duty.Trips[2].Type != Deadhead {
		t.Fatalf("expected first and last trips to be deadheads")
	}
	if duty.Trips[0].ArrivalS() != 3600 {
		t.Fatalf("expected pull-out to arrive exactly at the trip's departure, got %d", duty.Trips[0].ArrivalS())
	}
	if err := CheckMonotonic(duty); err != nil {
		t.Fatalf("duty violates monotonicity: %v", err)
	}
}

func TestGeneratorExtendsDutyAcrossAMatchingFollowOnTrip(t *testing.T) {
	g := grid.New()
	depot := point("depot")
	a, b, c := point("A"), point("B"), point("C")

	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: b, DepartureS: 3600, DurationS: 600, DistanceKm: 5},
		{ID: "t2", Line: "1", VehicleType: "bus", Origin: b, Destination: c, DepartureS: 4500, DurationS: 600, DistanceKm: 5},
	}

	gen := NewGenerator(g, nil, baseParams(), depot, []VehicleTypeProfile{busProfile()}, nil)
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(duties) != 1 {
		t.Fatalf("expected both trips merged into a single duty, got %d duties", len(duties))
	}
	duty := duties[0]
	if len(duty.Trips) != 4 {
		t.Fatalf("expected pull-out + 2 trips + pull-in, got %d", len(duty.Trips))
	}
	if pause := duty.Trips[1].PauseS(); pause != 300 {
		t.Fatalf("expected a 300s pause between trips, got %d", pause)
	}
}

func TestGeneratorSplitsIntoTwoDutiesWhenPauseExceedsMax(t *testing.T) {
	g := grid.New()
	depot := point("depot")
	a, b, c := point("A"), point("B"), point("C")

	params := baseParams()
	params.MaxPauseDurationS = 120

	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: b, DepartureS: 3600, DurationS: 600, DistanceKm: 5},
		{ID: "t2", Line: "1", VehicleType: "bus", Origin: b, Destination: c, DepartureS: 4500, DurationS: 600, DistanceKm: 5},
	}

	gen := NewGenerator(g, nil, params, depot, []VehicleTypeProfile{busProfile()}, nil)
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(duties) != 2 {
		t.Fatalf("expected 2 duties (pause exceeds max_pause_duration), got %d", len(duties))
	}
}

func TestGeneratorInjectsDelayWhenAddDelaysIsSet(t *testing.T) {
	g := grid.New()
	depot := point("depot")
	a, b, c := point("A"), point("B"), point("C")

	params := baseParams()
	params.AddDelays = true
	params.DelayMode = "all"

	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: b, DepartureS: 3600, DurationS: 600, DistanceKm: 5, DelayS: 200},
		{ID: "t2", Line: "1", VehicleType: "bus", Origin: b, Destination: c, DepartureS: 4700, DurationS: 600, DistanceKm: 5},
	}

	gen := NewGenerator(g, nil, params, depot, []VehicleTypeProfile{busProfile()}, nil)
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstLeg := duties[0].Trips[1].Legs[0]
	if firstLeg.Segments[0].DelayS != 200 {
		t.Fatalf("expected the injected delay to carry onto the trip's segment, got %d", firstLeg.Segments[0].DelayS)
	}
	if pause := firstLeg.PauseS; pause != 300 {
		t.Fatalf("expected the pause to shrink by the injected delay (500-200=300), got %d", pause)
	}
}

func TestGeneratorOpportunityChargesAtAChargingLocation(t *testing.T) {
	g := grid.New()
	depot := point("depot")
	a, b, c := point("A"), point("B"), point("C")

	params := baseParams()
	params.MaxPauseDurationS = 7200

	profile := busProfile()
	trips := []PassengerTrip{
		{ID: "t1", Line: "1", VehicleType: "bus", Origin: a, Destination: b, DepartureS: 3600, DurationS: 600, DistanceKm: 100},
		{ID: "t2", Line: "1", VehicleType: "bus", Origin: b, Destination: c, DepartureS: 9000, DurationS: 600, DistanceKm: 100},
	}

	gen := NewGenerator(g, nil, params, depot, []VehicleTypeProfile{profile}, []string{"B"})
	duties, err := gen.Generate(trips)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(duties) != 1 {
		t.Fatalf("expected a single duty, got %d", len(duties))
	}
	if pause := duties[0].Trips[1].PauseS(); pause <= 0 {
		t.Fatalf("expected a nonzero opportunity-charge pause at B, got %d", pause)
	}
}
