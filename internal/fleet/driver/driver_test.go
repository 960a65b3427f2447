package driver

import (
	"testing"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/facility"
	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/scheduling"
)

func busType() *vehicle.Type {
	return &vehicle.Type{
		Name:                        "bus",
		Architecture:                vehicle.SimpleElectric,
		AuxPowerKW:                  2,
		TractionConsumptionKWhPerKm: 1.2,
		Battery: vehicle.BatteryParams{
			CapacityMaxKWh: 300,
			SocReserve:     0.1,
			SocMin:         0.05,
			SocMax:         1.0,
			SocInit:        0.5,
			SoH:            1.0,
			DischargeRateC: 2,
			ChargeRateC:    2,
		},
		ChargingInterfaceTypes: []interfacectl.InterfaceType{interfacectl.Plug},
	}
}

func straightDuty(origin, dest grid.Point, distanceKm float64, durationS, pauseS int64) *scheduling.ScheduleNode {
	seg := &scheduling.SegmentNode{
		GridSegment:         grid.Segment{ID: origin.ID + "-" + dest.ID, Origin: origin, Destination: dest, DistanceKm: distanceKm},
		ScheduledDepartureS: 0,
		DurationS:           durationS,
	}
	leg := &scheduling.LegNode{Segments: []*scheduling.SegmentNode{seg}, PauseS: pauseS}
	trip := &scheduling.TripNode{ID: "trip-1", Type: scheduling.Passenger, Legs: []*scheduling.LegNode{leg}}
	return &scheduling.ScheduleNode{ID: "duty-1", Trips: []*scheduling.TripNode{trip}}
}

func TestDriveSegmentWithNoFacilityJustConsumesEnergy(t *testing.T) {
	k := kernel.New()
	origin := grid.Point{ID: "A", Name: "A", Type: "stop"}
	dest := grid.Point{ID: "B", Name: "B", Type: "stop"}
	v := vehicle.New(k, nil, "bus-1", busType(), origin)
	network := facility.NewNetwork(k)

	duty := straightDuty(origin, dest, 10, 600, 0)
	d := New(k, network, interfacectl.DefaultParams, false)

	var records []TripRecord
	var err error
	k.Process("vehicle", func(p *kernel.Process) error {
		records, err = d.Drive(p, v, duty)
		return nil
	})
	k.Run(nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one trip record, got %d", len(records))
	}
	if v.OdometerKm != 10 {
		t.Fatalf("expected odometer 10, got %v", v.OdometerKm)
	}
	if records[0].ArrivalEnergyKWh >= records[0].DepartureEnergyKWh {
		t.Fatalf("expected energy to drop while driving with no charging available")
	}
}

func TestDrivePauseChargesAtMatchingFacility(t *testing.T) {
	k := kernel.New()
	origin := grid.Point{ID: "A", Name: "A", Type: "stop"}
	dest := grid.Point{ID: "B", Name: "B", Type: "stop"}
	v := vehicle.New(k, nil, "bus-2", busType(), origin)
	network := facility.NewNetwork(k)
	network.CreatePoint("plug-at-B", interfacectl.Plug, dest, 1, 0, 0)

	duty := straightDuty(origin, dest, 10, 600, 1800)
	d := New(k, network, interfacectl.DefaultParams, false)

	var err error
	k.Process("vehicle", func(p *kernel.Process) error {
		_, err = d.Drive(p, v, duty)
		return nil
	})
	k.Run(nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iface := v.Primary.Interfaces[0]
	if iface.State() != interfacectl.Undocked {
		t.Fatalf("expected interface undocked at end of duty, got %v", iface.State())
	}
	if f, ok := network.ByID("plug-at-B"); !ok || f.MaxOccupation() == 0 {
		t.Fatalf("expected the facility to have observed an occupied slot")
	}
}
