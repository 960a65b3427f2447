package interfacectl

import (
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/simerr"
	"github.com/nexabus/evsim/internal/storage"
)

// SelectInterface walks the vehicle's interfaces in preference order
// against the facilities available at a location, returning the first
// interface whose type has a match, the matching facility, and whether a
// match was found (spec.md §4.5 step 1).
func SelectInterface(interfaces []*Interface, available map[string]Facility) (*Interface, Facility, bool) {
	for _, iface := range interfaces {
		if facility, ok := available[iface.Type.Name]; ok {
			return iface, facility, true
		}
	}
	return nil, nil, false
}

// Run executes spec.md §4.5 steps 2-7 for one matched interface/facility
// pair over an interval of durationS seconds. needsUndock reports whether
// the next location cannot reuse this interface, so it must be undocked
// before departing (unless dynamic-undock makes that free). store's
// validity is consulted after charging to classify a soc breach as fatal
// or sticky (spec.md §4.5's failure semantics, §7's SoC invalid row).
//
// onConnect, if non-nil, runs the instant the physical connection is made
// (after iface.Connect succeeds); onDisconnect, if non-nil, runs the instant
// before it is torn down. The charge controller arbitrating this interface's
// subsystem hooks its Connect/Disconnect here, so the controller only ever
// offers interface capacity while the interface is actually docked and
// connected (original_source/eflips/energy.py's ChargeController subscribes
// directly to the interface's own connect/disconnect transitions; these
// hooks are this package's equivalent without an unsubscribe-free
// permanent-notifier wiring).
func Run(k *kernel.Kernel, p *kernel.Process, iface *Interface, facility Facility, durationS int64, params ScheduleParams, needsUndock bool, store *storage.Store, onConnect, onDisconnect func()) error {
	if !params.TryCharging {
		return idle(p, durationS)
	}

	queueing := false
	if !facility.IsVacant() {
		if !params.QueueForCharging {
			return idle(p, durationS)
		}
		queueing = true
	}

	dockTimeS := int64(0)
	if !iface.IsDocked() {
		dockTimeS = iface.Type.DeadTimeDockS
	}
	undockTimeS := int64(0)
	if needsUndock && !iface.Type.DynamicUndock {
		undockTimeS = iface.Type.DeadTimeUndockS
	}
	manoeuvreBeforeS := int64(0)
	if queueing {
		manoeuvreBeforeS = facility.ManoeuvreDurationBeforeS()
	}
	manoeuvreAfterS := facility.ManoeuvreDurationAfterS()

	timeRemaining := durationS - dockTimeS - undockTimeS - manoeuvreBeforeS - manoeuvreAfterS - params.MinChargeDurationS
	if !params.ChargeFull && timeRemaining < 0 {
		return idle(p, durationS)
	}

	start := p.Now()
	req := facility.RequestSlot()
	granted, err := awaitSlot(k, p, req, params.ChargeFull, timeRemaining, facility)
	if err != nil {
		return err
	}
	if !granted {
		return idle(p, durationS-(p.Now()-start))
	}

	if queueing {
		if err := p.Timeout(facility.ManoeuvreDurationBeforeS()); err != nil {
			facility.ReleaseSlot()
			return err
		}
	}
	if err := iface.Dock(p); err != nil {
		facility.ReleaseSlot()
		return err
	}
	if err := iface.Connect(facility); err != nil {
		facility.ReleaseSlot()
		return err
	}
	if onConnect != nil {
		onConnect()
	}

	elapsed := p.Now() - start
	chargeDeadlineS := durationS - elapsed - undockTimeS - manoeuvreAfterS
	chargeErr := chargeUntilDoneOrDeadline(k, p, store, params, chargeDeadlineS)

	if onDisconnect != nil {
		onDisconnect()
	}
	iface.Disconnect()
	var undockErr error
	if needsUndock {
		if iface.Type.DynamicUndock {
			iface.state = Undocked
		} else {
			undockErr = iface.Undock(p)
		}
	}
	facility.ReleaseSlot()

	if chargeErr != nil {
		return chargeErr
	}
	if undockErr != nil {
		return undockErr
	}

	if !store.AllowInvalidSoc && store.WasInvalid() {
		return simerr.New(simerr.KindSocInvalid, "battery soc breach during charging")
	}
	return nil
}

// idle waits out the remainder of an interval when no charging is
// attempted (spec.md §4.5 step 2, and the queueing/try_charging gates).
func idle(p *kernel.Process, durationS int64) error {
	if durationS <= 0 {
		return nil
	}
	return p.Timeout(durationS)
}

// awaitSlot requests facility's slot, guarded by a timekeeper that
// interrupts the request once timeRemaining elapses, unless chargeFull is
// set (in which case the request is unbounded, per spec.md §4.5 step 5).
// A timed-out request is not an error: the vehicle proceeds without
// charging (spec.md §7 "Slot not granted in time").
func awaitSlot(k *kernel.Kernel, p *kernel.Process, req *kernel.Event, chargeFull bool, timeRemainingS int64, facility Facility) (bool, error) {
	if chargeFull {
		_, err := p.Wait(req)
		if err != nil {
			facility.CancelSlotRequest(req)
			return false, err
		}
		return true, nil
	}

	if timeRemainingS <= 0 {
		facility.CancelSlotRequest(req)
		return false, nil
	}

	self := p.Self()
	timedOut := false
	k.Schedule(timeRemainingS, func() {
		if !req.Fired() {
			timedOut = true
			_ = k.Interrupt(self, "slot_request_timeout")
		}
	})

	_, err := p.Wait(req)
	if err != nil {
		if timedOut {
			facility.CancelSlotRequest(req)
			return false, nil
		}
		facility.CancelSlotRequest(req)
		return false, err
	}
	return true, nil
}

// chargeUntilDoneOrDeadline charges until storage reports fully_charged
// (charge_full) or until deadlineS elapses, whichever the parameters call
// for (spec.md §4.5 step 6).
func chargeUntilDoneOrDeadline(k *kernel.Kernel, p *kernel.Process, store *storage.Store, params ScheduleParams, deadlineS int64) error {
	if params.ChargeFull {
		_, err := p.Wait(store.FullyCharged())
		if err == nil && params.ReleaseWhenFull {
			return nil
		}
		return err
	}
	if deadlineS <= 0 {
		return nil
	}
	if !params.ReleaseWhenFull {
		return p.Timeout(deadlineS)
	}

	self := p.Self()
	deadlineHit := false
	full := store.FullyCharged()
	k.Schedule(deadlineS, func() {
		if !full.Fired() {
			deadlineHit = true
			_ = k.Interrupt(self, "charge_deadline")
		}
	})
	_, err := p.Wait(full)
	if deadlineHit {
		return nil
	}
	return err
}
