package storage

import (
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
)

// Battery is a Store specialised for traction batteries: it tracks
// state-of-health degradation and a usable state-of-charge window
// (soc_min/soc_reserve/soc_max), grounded on original_source/eflips
// energy.py's Battery(EnergyStorage) (spec.md §4.3, §6).
type Battery struct {
	*Store

	SocReserve float64 // 0..1, soc below which the charge state is critical
	SocMin     float64 // 0..1, usable floor
	SocMax     float64 // 0..1, usable ceiling
	SoH        float64 // 0..1, state of health
}

// NewBattery builds a Battery with its usable energy window and flow limits
// derived from the nameplate capacity, state of health, and C-rates.
func NewBattery(k *kernel.Kernel, medium energy.Medium, nominalKWh, socReserve, socMin, socMax, socInit, soh, dischargeRateC, chargeRateC, dischargeEff, chargeEff float64) *Battery {
	realKWh := nominalKWh * soh
	flowLower := -nominalKWh * dischargeRateC
	flowUpper := nominalKWh * chargeRateC
	energyInit := socInit * realKWh

	s := NewStore(k, medium, realKWh, energyInit, flowLower, flowUpper, chargeEff, dischargeEff)
	b := &Battery{
		Store:      s,
		SocReserve: socReserve,
		SocMin:     socMin,
		SocMax:     socMax,
		SoH:        soh,
	}
	s.socValid = func() bool { return b.Soc() >= socMin }
	s.socCritical = func() bool { return b.Soc() < socReserve }
	s.energyMax = func() float64 { return s.NominalKWh * socMax }
	return b
}

// Soc returns the fraction of real (state-of-health-derated) capacity
// currently held.
func (b *Battery) Soc() float64 {
	if b.Store.NominalKWh == 0 {
		return 0
	}
	return b.Store.EnergyKWh() / b.Store.NominalKWh
}

// EnergyMinKWh is the usable floor, below soc_min of real capacity.
func (b *Battery) EnergyMinKWh() float64 {
	return b.Store.NominalKWh * b.SocMin
}

// EnergyRemainingKWh is the energy usable by the vehicle above the soc_min
// floor (spec.md §4.3 "energy_remaining").
func (b *Battery) EnergyRemainingKWh() float64 {
	return b.Store.EnergyKWh() - b.EnergyMinKWh()
}
