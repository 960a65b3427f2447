package vehicle

import (
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/port"
)

// HVACParams configures one vehicle's climate system, grounded on
// original_source/eflips/vehicle.py's HVACWithBackup/HVACWithBackupDualMedia
// constructor arguments (capacity/COP per unit type, unit counts) plus
// spec.md §6's `vehicle_params.<type>.hvac.{num_ac,hp,backup_units,
// hp_cutoff_temperature}` fields.
type HVACParams struct {
	NumAC        int
	CapacityACKW float64
	COPAC        float64

	NumHP        int
	CapacityHPKW float64
	COPHP        float64

	NumBackupUnits   int
	CapacityBackupKW float64
	COPBackup        float64

	// HPCutoffTemperatureC is the ambient temperature below which the heat
	// pump stops operating and backup heating takes over entirely.
	HPCutoffTemperatureC float64

	// ThermalCoefficientKWPerC converts a cabin/ambient temperature gap into
	// a thermal demand in kW; a flat simplification standing in for the
	// source's unmodelled cabin thermal dynamics (spec.md §1 non-goal:
	// "battery chemistry / thermal modelling beyond a constant-efficiency
	// storage abstraction" — cabin thermal load is not battery thermal
	// modelling, but the same constant-efficiency spirit applies here).
	ThermalCoefficientKWPerC float64

	// BackupMedium is electricity (HvacElectric) or diesel (HvacDualMedia):
	// the medium backup heating draws from.
	BackupMedium energy.Medium
}

func (p HVACParams) capacityACTotal() float64     { return float64(p.NumAC) * p.CapacityACKW }
func (p HVACParams) capacityHPTotal() float64     { return float64(p.NumHP) * p.CapacityHPKW }
func (p HVACParams) capacityBackupTotal() float64 { return float64(p.NumBackupUnits) * p.CapacityBackupKW }

// HVAC is a vehicle's climate system: it converts the ambient/cabin
// temperature gap into cooling (AC) or heating (heat pump, then backup)
// demand and publishes the resulting electrical (and, for dual-media
// architectures, backup-fuel) draw.
type HVAC struct {
	Params HVACParams

	// ElectricPort carries AC, heat-pump, and (for an electric backup)
	// backup-heating power.
	ElectricPort *port.Port
	// BackupPort carries backup-heating power on Params.BackupMedium when
	// that medium is not electricity (HvacDualMedia); nil otherwise.
	BackupPort *port.Port

	on bool
}

// NewHVAC builds an HVAC system, off by default.
func NewHVAC(params HVACParams) *HVAC {
	h := &HVAC{
		Params:       params,
		ElectricPort: port.New("hvac-electric"),
	}
	if params.BackupMedium != energy.Electricity {
		h.BackupPort = port.New("hvac-backup")
	}
	return h
}

// Update recomputes and publishes the HVAC system's draw given whether it is
// switched on and the current ambient/cabin temperatures (spec.md §6
// `ambient_params.temperature`, `vehicle_params.<type>.cabin_temperature`).
func (h *HVAC) Update(on bool, ambientC, cabinC float64) {
	h.on = on
	if !on {
		h.ElectricPort.Set(energy.NewFlow(energy.Electricity, 0))
		if h.BackupPort != nil {
			h.BackupPort.Set(energy.NewFlow(h.Params.BackupMedium, 0))
		}
		return
	}

	coolingDemandKW := h.Params.ThermalCoefficientKWPerC * max0(ambientC-cabinC)
	heatingDemandKW := h.Params.ThermalCoefficientKWPerC * max0(cabinC-ambientC)

	var electricKW, backupKW float64

	if coolingDemandKW > 0 {
		coolingKW := min(coolingDemandKW, h.Params.capacityACTotal())
		if h.Params.COPAC > 0 {
			electricKW += coolingKW / h.Params.COPAC
		}
	}

	if heatingDemandKW > 0 {
		if ambientC >= h.Params.HPCutoffTemperatureC {
			hpKW := min(heatingDemandKW, h.Params.capacityHPTotal())
			if h.Params.COPHP > 0 {
				electricKW += hpKW / h.Params.COPHP
			}
			remainingKW := heatingDemandKW - hpKW
			if remainingKW > 0 {
				backupKW = min(remainingKW, h.Params.capacityBackupTotal())
			}
		} else {
			backupKW = min(heatingDemandKW, h.Params.capacityBackupTotal())
		}
		if backupKW > 0 && h.Params.COPBackup > 0 {
			backupKW /= h.Params.COPBackup
		}
	}

	if h.Params.BackupMedium == energy.Electricity {
		electricKW += backupKW
		backupKW = 0
	}

	h.ElectricPort.Set(energy.NewFlow(energy.Electricity, electricKW))
	if h.BackupPort != nil {
		h.BackupPort.Set(energy.NewFlow(h.Params.BackupMedium, backupKW))
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
