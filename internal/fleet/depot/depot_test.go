package depot

import (
	"testing"

	"github.com/nexabus/evsim/internal/charging/interfacectl"
	"github.com/nexabus/evsim/internal/facility"
	"github.com/nexabus/evsim/internal/fleet"
	"github.com/nexabus/evsim/internal/fleet/vehicle"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/kernel"
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

func TestSimpleDepotAlwaysCreatesAFreshVehicle(t *testing.T) {
	k := kernel.New()
	loc := grid.Point{ID: "depot", Name: "depot", Type: "depot"}
	f := fleet.New(k, nil, []*vehicle.Type{busType()})
	d := NewSimple(k, nil, loc, f)

	var first, second *vehicle.Vehicle
	var err error
	k.Process("dispatch", func(p *kernel.Process) error {
		first, err = d.RequestVehicle(p, "bus", 0)
		if err != nil {
			return err
		}
		d.ReturnVehicle(p, first)
		second, err = d.RequestVehicle(p, "bus", 0)
		return err
	})
	k.Run(nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatalf("expected two distinct vehicles, got the same one back")
	}
}

func TestChargingDepotReturnsVehicleToReadyAfterFullCharge(t *testing.T) {
	k := kernel.New()
	loc := grid.Point{ID: "depot", Name: "depot", Type: "depot"}
	network := facility.NewNetwork(k)
	network.CreatePoint("depot-plug", interfacectl.Plug, loc, 2, 0, 0)
	f := fleet.New(k, nil, []*vehicle.Type{busType()})
	d := NewCharging(k, nil, loc, f, network, 60, 60, false)

	var requested *vehicle.Vehicle
	var reentered *vehicle.Vehicle
	var err error
	k.Process("dispatch", func(p *kernel.Process) error {
		requested, err = d.RequestVehicle(p, "bus", 0)
		if err != nil {
			return err
		}
		d.ReturnVehicle(p, requested)
		if err := p.Timeout(24 * 3600); err != nil {
			return err
		}
		reentered, err = d.RequestVehicle(p, "bus", 0)
		return err
	})
	k.Run(nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reentered != requested {
		t.Fatalf("expected the same pooled vehicle back from ready")
	}
	if d.NumReady() != 0 || d.NumInService() != 1 || d.NumCharging() != 0 {
		t.Fatalf("expected ready=0 in_service=1 charging=0, got ready=%d in_service=%d charging=%d",
			d.NumReady(), d.NumInService(), d.NumCharging())
	}
}

func TestChargingDepotInterruptsChargingVehicleWhenRangeSuffices(t *testing.T) {
	k := kernel.New()
	loc := grid.Point{ID: "depot", Name: "depot", Type: "depot"}
	network := facility.NewNetwork(k)
	network.CreatePoint("depot-plug", interfacectl.Plug, loc, 2, 0, 0)
	f := fleet.New(k, nil, []*vehicle.Type{busType()})
	d := NewCharging(k, nil, loc, f, network, 3600, 3600, true)

	var first, second *vehicle.Vehicle
	var err error
	k.Process("dispatch", func(p *kernel.Process) error {
		first, err = d.RequestVehicle(p, "bus", 0)
		if err != nil {
			return err
		}
		d.ReturnVehicle(p, first)
		if err := p.Timeout(10); err != nil {
			return err
		}
		second, err = d.RequestVehicle(p, "bus", 0)
		return err
	})
	k.Run(nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Fatalf("expected the interrupted vehicle to be handed back immediately")
	}
	if d.NumCharging() != 0 || d.NumInService() != 1 {
		t.Fatalf("expected the vehicle moved straight from charging to in_service, got charging=%d in_service=%d",
			d.NumCharging(), d.NumInService())
	}
}
