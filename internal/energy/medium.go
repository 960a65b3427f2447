// Package energy implements medium-tagged energy quantities and power
// flows, and the fuel-mass/volume conversions used by the fleet energy
// model (spec.md §3, §4.3).
package energy

import "fmt"

// Medium identifies what a Quantity or Flow is measured in. Media carrying
// a heating value and density (fuels) support conversion to mass and
// volume; electricity, mechanical power and heat do not.
type Medium struct {
	Name string

	// HeatingValueKJPerKg is the fuel's lower heating value. Zero means
	// "not a fuel medium" (e.g. electricity, heat, mechanical).
	HeatingValueKJPerKg float64

	// DensityKgPerL is the fuel's density at operating conditions. Zero
	// means "not a fuel medium".
	DensityKgPerL float64
}

// IsFuel reports whether m carries the heating-value/density pair needed
// for mass/volume conversion.
func (m Medium) IsFuel() bool {
	return m.HeatingValueKJPerKg > 0 && m.DensityKgPerL > 0
}

func (m Medium) String() string { return m.Name }

// Well-known media used throughout the fleet model (spec.md §3 "Media
// include electricity, diesel, hydrogen, heat, mechanical").
var (
	Electricity = Medium{Name: "electricity"}
	Diesel      = Medium{Name: "diesel", HeatingValueKJPerKg: 42800, DensityKgPerL: 0.832}
	Hydrogen    = Medium{Name: "hydrogen", HeatingValueKJPerKg: 120000, DensityKgPerL: 0.071}
	Heat        = Medium{Name: "heat"}
	Mechanical  = Medium{Name: "mechanical"}
)

// ErrMediumMismatch is returned (wrapped with the offending media) whenever
// arithmetic is attempted across two different media (spec.md §3 "mixed
// medium arithmetic fails"; §7 "Medium mismatch ... fatal").
type ErrMediumMismatch struct {
	A, B Medium
}

func (e ErrMediumMismatch) Error() string {
	return fmt.Sprintf("energy: medium mismatch: %s vs %s", e.A, e.B)
}

func requireSameMedium(a, b Medium) error {
	if a != b {
		return ErrMediumMismatch{A: a, B: b}
	}
	return nil
}
