package energy

const secondsPerHour = 3600.0

// Quantity is a medium-tagged amount of energy, held in kWh.
type Quantity struct {
	Medium Medium
	KWh    float64
}

// NewQuantity builds a Quantity of the given medium and magnitude.
func NewQuantity(m Medium, kWh float64) Quantity {
	return Quantity{Medium: m, KWh: kWh}
}

// Add returns q+other; both must share a medium (spec.md §3).
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if err := requireSameMedium(q.Medium, other.Medium); err != nil {
		return Quantity{}, err
	}
	return Quantity{Medium: q.Medium, KWh: q.KWh + other.KWh}, nil
}

// Sub returns q-other; both must share a medium (spec.md §3).
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if err := requireSameMedium(q.Medium, other.Medium); err != nil {
		return Quantity{}, err
	}
	return Quantity{Medium: q.Medium, KWh: q.KWh - other.KWh}, nil
}

// AsFlow returns the constant Flow that, sustained for duration seconds,
// would deliver exactly q (the inverse of Flow.Integrate).
func (q Quantity) AsFlow(durationSeconds float64) Flow {
	if durationSeconds == 0 {
		return Flow{Medium: q.Medium, KW: 0}
	}
	return Flow{Medium: q.Medium, KW: q.KWh * secondsPerHour / durationSeconds}
}

// MassKg converts q to a fuel mass; only defined for fuel media.
func (q Quantity) MassKg() (float64, error) {
	if !q.Medium.IsFuel() {
		return 0, ErrMediumMismatch{A: q.Medium, B: Diesel}
	}
	// kWh -> kJ -> kg via heating value.
	return q.KWh * 3600 / q.Medium.HeatingValueKJPerKg, nil
}

// VolumeL converts q to a fuel volume in litres; only defined for fuel
// media.
func (q Quantity) VolumeL() (float64, error) {
	massKg, err := q.MassKg()
	if err != nil {
		return 0, err
	}
	return massKg / q.Medium.DensityKgPerL, nil
}

// QuantityFromMassKg builds a Quantity of a fuel medium from a mass.
func QuantityFromMassKg(m Medium, massKg float64) (Quantity, error) {
	if !m.IsFuel() {
		return Quantity{}, ErrMediumMismatch{A: m, B: Diesel}
	}
	return Quantity{Medium: m, KWh: massKg * m.HeatingValueKJPerKg / 3600}, nil
}

// QuantityFromVolumeL builds a Quantity of a fuel medium from a volume.
func QuantityFromVolumeL(m Medium, volumeL float64) (Quantity, error) {
	if !m.IsFuel() {
		return Quantity{}, ErrMediumMismatch{A: m, B: Diesel}
	}
	return QuantityFromMassKg(m, volumeL*m.DensityKgPerL)
}
