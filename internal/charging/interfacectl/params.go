package interfacectl

// ScheduleParams is the per-(schedule, location) charging-schedule
// parameter record consulted by the decision algorithm (spec.md §4.5 step
// 3), falling back to process-wide defaults when no schedule-specific
// record exists.
type ScheduleParams struct {
	// TryCharging is the master gate: if false, charging is skipped
	// entirely at this location.
	TryCharging bool
	// QueueForCharging, if true, waits in the slot queue when the facility
	// is occupied; if false, skips charging rather than queueing.
	QueueForCharging bool
	// ChargeFull overrides the available duration and stays connected
	// until the storage reports fully_charged.
	ChargeFull bool
	// ReleaseWhenFull frees the slot as soon as the storage is full,
	// rather than holding it until the interval ends.
	ReleaseWhenFull bool
	// MinChargeDurationS is a reserved minimum charging duration, deducted
	// from the interval before manoeuvre/dock times are considered.
	MinChargeDurationS int64
}

// DefaultParams is used whenever no schedule-specific record is found.
var DefaultParams = ScheduleParams{
	TryCharging:        true,
	QueueForCharging:   true,
	ChargeFull:         false,
	ReleaseWhenFull:    true,
	MinChargeDurationS: 0,
}
