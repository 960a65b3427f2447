package energy

import "testing"

func TestIntegrateConstantFlow(t *testing.T) {
	f := NewFlow(Electricity, 150)
	got := f.Integrate(3600)
	if got.KWh != 150 {
		t.Fatalf("1h at 150kW should yield 150kWh, got %f", got.KWh)
	}

	got = f.Integrate(1800)
	if got.KWh != 75 {
		t.Fatalf("30min at 150kW should yield 75kWh, got %f", got.KWh)
	}
}

func TestMediumMismatchFails(t *testing.T) {
	a := NewQuantity(Electricity, 10)
	b := NewQuantity(Diesel, 10)
	if _, err := a.Add(b); err == nil {
		t.Fatalf("expected medium mismatch error")
	}
}

func TestFuelConversionRoundTrip(t *testing.T) {
	q := NewQuantity(Diesel, 100)
	massKg, err := q.MassKg()
	if err != nil {
		t.Fatal(err)
	}
	back, err := QuantityFromMassKg(Diesel, massKg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := back.KWh - q.KWh; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("round trip mismatch: %f vs %f", back.KWh, q.KWh)
	}
}

func TestNonFuelConversionFails(t *testing.T) {
	q := NewQuantity(Electricity, 10)
	if _, err := q.MassKg(); err == nil {
		t.Fatalf("expected error converting electricity to mass")
	}
}
