package storage

import (
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
)

// NewDieselTank builds a fuel Store with generously high flow limits (no
// meaningful discharge-rate constraint applies to a fuel tank feeding a
// burner) and no soc validity window beyond "not empty", grounded on
// original_source/eflips energy.py's DieselTank(EnergyStorage).
func NewDieselTank(k *kernel.Kernel, diesel energy.Medium, nominalKWh, energyInitKWh float64) *Store {
	const veryHighFlowKW = 1e6
	return NewStore(k, diesel, nominalKWh, energyInitKWh, -veryHighFlowKW, veryHighFlowKW, 1, 1)
}
