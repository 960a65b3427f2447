package vehicle

import (
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
)

// Traction is the vehicle's driving power model: it publishes power for the
// duration of a segment and blocks until it completes, grounded on
// original_source/eflips/vehicle.py's Traction_Leg/ConstantConsumptionTraction.
// spec.md §1's non-goal on millisecond-accurate vehicle dynamics rules out
// the source's efficiency-map variants; a constant specific consumption is
// the one traction model this scope carries.
type Traction struct {
	Port *port.Port

	medium                      energy.Medium
	specificConsumptionKWhPerKm float64
}

// NewTraction builds a traction model drawing specificConsumptionKWhPerKm
// per kilometre from medium.
func NewTraction(medium energy.Medium, specificConsumptionKWhPerKm float64) *Traction {
	return &Traction{
		Port:                        port.New("traction"),
		medium:                      medium,
		specificConsumptionKWhPerKm: specificConsumptionKWhPerKm,
	}
}

// DriveSegment publishes the power drawn over distanceKm covered in
// durationS, holds it for the duration, then zeroes it.
func (t *Traction) DriveSegment(p *kernel.Process, distanceKm float64, durationS int64) error {
	if durationS <= 0 {
		t.Port.Set(energy.NewFlow(t.medium, 0))
		return nil
	}
	consumedKWh := t.specificConsumptionKWhPerKm * distanceKm
	powerKW := consumedKWh * 3600 / float64(durationS)
	t.Port.Set(energy.NewFlow(t.medium, powerKW))
	if err := p.Timeout(durationS); err != nil {
		return err
	}
	t.Port.Set(energy.NewFlow(t.medium, 0))
	return nil
}
