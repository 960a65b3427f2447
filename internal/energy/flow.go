package energy

// Flow is a medium-tagged instantaneous power, held in kW. Positive values
// denote consumption/draw; negative values denote recuperation/supply,
// following spec.md §4.4's sign convention.
type Flow struct {
	Medium Medium
	KW     float64
}

// NewFlow builds a Flow of the given medium and magnitude.
func NewFlow(m Medium, kW float64) Flow {
	return Flow{Medium: m, KW: kW}
}

// Add returns f+other; both must share a medium.
func (f Flow) Add(other Flow) (Flow, error) {
	if err := requireSameMedium(f.Medium, other.Medium); err != nil {
		return Flow{}, err
	}
	return Flow{Medium: f.Medium, KW: f.KW + other.KW}, nil
}

// Integrate returns the Quantity delivered by holding f constant for
// durationSeconds, i.e. exact trapezoidal integration of a piecewise
// constant flow (spec.md §3: "Flow × duration = Energy").
func (f Flow) Integrate(durationSeconds float64) Quantity {
	return Quantity{Medium: f.Medium, KWh: f.KW * durationSeconds / secondsPerHour}
}

// IntegrateTrapezoid returns the Quantity delivered by a flow that ramps
// linearly from f to next over durationSeconds — the general trapezoidal
// case spec.md §3 names; Integrate is the degenerate constant-flow case
// (next == f).
func (f Flow) IntegrateTrapezoid(next Flow, durationSeconds float64) (Quantity, error) {
	if err := requireSameMedium(f.Medium, next.Medium); err != nil {
		return Quantity{}, err
	}
	avg := (f.KW + next.KW) / 2
	return Quantity{Medium: f.Medium, KWh: avg * durationSeconds / secondsPerHour}, nil
}
