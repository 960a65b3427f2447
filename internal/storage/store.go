// Package storage implements the charge/discharge-limited energy store and
// its update protocol (spec.md §4.3): integrate the held flow since the
// last update, clamp energy to [0, nominal], publish the new net flow, and
// arm a fully_charged firing (plus an optional periodic refresh while
// charging).
package storage

import (
	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
)

const epsilon = 1e-5

// Store is a generic medium-tagged energy store: a battery, a diesel tank,
// or any other bounded reservoir with asymmetric charge/discharge flow
// limits and round-trip efficiencies.
type Store struct {
	k *kernel.Kernel

	Medium    energy.Medium
	NominalKWh float64

	// FlowLimitLowerKW is the maximum discharge rate, held negative.
	FlowLimitLowerKW float64
	// FlowLimitUpperKW is the maximum charge rate, held positive. Reported
	// as zero once the store is full.
	FlowLimitUpperKW float64

	ChargeEfficiency    float64
	DischargeEfficiency float64

	// ForceUpdatesWhileCharging, if true, arms a periodic refresh every
	// ChargingUpdateIntervalS while charging, instead of relying solely on
	// the single fully_charged firing (spec.md §4.3 step 4).
	ForceUpdatesWhileCharging bool
	ChargingUpdateIntervalS   int64

	// AllowInvalidSoc, if false, makes a state-of-charge breach fatal
	// (recorded via WasInvalid(), which interfacectl.Run turns into a fatal
	// error); if true, the breach is recorded but
	// simulation continues (spec.md §4.5 "Soc breach ... fatal if
	// allow_invalid_soc=false; else continue with a sticky was-invalid
	// flag").
	AllowInvalidSoc bool

	energyKWh  float64
	lastUpdate int64
	netFlowKW  float64 // > 0: charging; < 0: discharging

	// Port is where loads connect; by convention flow > 0 is consumption
	// (discharge) and flow < 0 is production (charge) from the load's
	// perspective, mirroring internal/port's general sign convention.
	Port *port.Port

	fullyCharged *kernel.Event
	wasInvalid   bool
	wasCritical  bool
	subscribers  []func()

	// socValid, socCritical and energyMax are overridable predicates;
	// Battery replaces these with soc_min/soc_reserve/soc_max-aware
	// versions at construction time (Go has no virtual dispatch to lean
	// on here).
	socValid    func() bool
	socCritical func() bool
	energyMax   func() float64
}

// NewStore creates a Store at energyInitKWh, wired to the kernel for
// scheduling fully_charged/periodic-refresh events.
func NewStore(k *kernel.Kernel, medium energy.Medium, nominalKWh, energyInitKWh, flowLimitLowerKW, flowLimitUpperKW, chargeEff, dischargeEff float64) *Store {
	s := &Store{
		k:                   k,
		Medium:              medium,
		NominalKWh:          nominalKWh,
		FlowLimitLowerKW:    flowLimitLowerKW,
		FlowLimitUpperKW:    flowLimitUpperKW,
		ChargeEfficiency:    chargeEff,
		DischargeEfficiency: dischargeEff,
		energyKWh:           energyInitKWh,
		Port:                port.New("storage"),
		fullyCharged:        k.NewEvent(),
	}
	s.socValid = func() bool { return s.energyKWh >= -epsilon }
	s.socCritical = func() bool { return !s.socValid() }
	s.energyMax = func() float64 { return s.NominalKWh }
	s.Port.Subscribe(func(energy.Flow) { s.update() })
	s.recomputeFlow()
	return s
}

// EnergyKWh returns the currently held energy.
func (s *Store) EnergyKWh() float64 { return s.energyKWh }

// EnergyMaxKWh returns the store's effective full-charge threshold (the
// base Store uses nominal capacity; Battery derates it by soc_max).
func (s *Store) EnergyMaxKWh() float64 { return s.energyMax() }

// IsFull reports whether the store is at (within epsilon of) its effective
// maximum.
func (s *Store) IsFull() bool {
	max := s.energyMax()
	return s.energyKWh > max*(1-epsilon)
}

// AvailableChargeLimitKW returns the upper flow limit, or zero once full
// (spec.md §4.3: storage stops accepting charge when full).
func (s *Store) AvailableChargeLimitKW() float64 {
	if s.IsFull() {
		return 0
	}
	return s.FlowLimitUpperKW
}

// FullyCharged returns the event that fires the next time the store becomes
// full, rearmed on every update.
func (s *Store) FullyCharged() *kernel.Event { return s.fullyCharged }

// WasInvalid reports whether the store ever breached its validity bound,
// whatever AllowInvalidSoc is set to.
func (s *Store) WasInvalid() bool { return s.wasInvalid }

// ForceUpdate re-runs the update protocol without a port change — used by
// the periodic refresh timer and by external callers that need a fresh
// reading (spec.md §4.3 step 4).
func (s *Store) ForceUpdate() { s.update() }

// Subscribe registers fn to run at the end of every update, whether
// triggered by a port change, a periodic refresh, or a fully_charged
// firing. The charge controller uses this to re-arbitrate flows whenever
// the store's available charge limit changes (e.g. dropping to zero once
// full), mirroring original_source/eflips energy.py's
// force_update_event/fully_charged_event hookup into ChargeController.
func (s *Store) Subscribe(fn func()) {
	s.subscribers = append(s.subscribers, fn)
}

// update implements spec.md §4.3 steps 1-4.
func (s *Store) update() {
	now := s.k.Now()
	duration := float64(now - s.lastUpdate)
	s.lastUpdate = now

	charged := s.netFlowKW * duration / 3600
	if charged >= 0 {
		charged *= s.ChargeEfficiency
	} else {
		charged /= s.DischargeEfficiency
	}
	s.energyKWh += charged
	if s.energyKWh < 0 {
		s.energyKWh = 0
	}
	if s.energyKWh > s.NominalKWh {
		s.energyKWh = s.NominalKWh
	}

	s.recomputeFlow()

	if !s.socValid() {
		s.wasInvalid = true
	}
	if s.socCritical() {
		s.wasCritical = true
	}

	if s.netFlowKW > 0 {
		remaining := s.energyMax() - s.energyKWh
		timeUntilFull := remaining * 3600 / (s.netFlowKW * s.ChargeEfficiency)
		if timeUntilFull > 0 {
			if s.ForceUpdatesWhileCharging && timeUntilFull >= float64(s.ChargingUpdateIntervalS) {
				s.k.Schedule(s.ChargingUpdateIntervalS, s.ForceUpdate)
			} else {
				s.scheduleFullyCharged(timeUntilFull)
			}
		}
	}

	if s.IsFull() {
		if !s.fullyCharged.Fired() {
			s.fullyCharged.Succeed(nil)
		}
	} else if s.fullyCharged.Fired() {
		s.fullyCharged = s.k.NewEvent()
	}

	for _, fn := range s.subscribers {
		fn()
	}
}

func (s *Store) scheduleFullyCharged(dt float64) {
	s.k.Schedule(int64(dt+0.5), func() {
		s.update()
	})
}

// recomputeFlow recomputes the net store-side flow from the load port's
// current flow and publishes it (spec.md §4.3 step 2). Net flow convention:
// positive means energy flowing into the store (charging).
func (s *Store) recomputeFlow() {
	s.netFlowKW = -s.Port.Flow().KW
}

// NetFlowKW returns the net flow currently applied to the store (positive
// charging, negative discharging).
func (s *Store) NetFlowKW() float64 { return s.netFlowKW }

// SocValid reports whether the store's state of charge is within its
// validity bound. The base Store only rejects negative energy; Battery
// installs a soc_min-aware predicate at construction time.
func (s *Store) SocValid() bool { return s.socValid() }

// SocCritical reports whether the store has reached a critical (but not yet
// invalid) state. The base Store treats invalid as critical; Battery
// installs a soc_reserve-aware predicate at construction time.
func (s *Store) SocCritical() bool { return s.socCritical() }
