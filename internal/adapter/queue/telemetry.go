package queue

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// StateChangeEvent is one port/storage/facility state-change notification
// (spec.md §5 "state-change notifications") published to whatever
// telemetry consumer subscribes, per SPEC_FULL.md §2's "Telemetry bus |
// publishes port/storage/facility state-change notifications | nats-io/
// nats.go".
type StateChangeEvent struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"` // "port" | "storage" | "facility"
	SubjectID string    `json:"subject_id"`
	SimTimeS  int64     `json:"sim_time_s"`
	At        time.Time `json:"at"`
}

const telemetrySubject = "evsim.state_change"

// TelemetryBus publishes StateChangeEvents over a MessageQueue. Fire-and-
// forget: a failed publish is logged, never returned to the caller that
// triggered the state change, matching the teacher's existing
// MessageQueue.Publish contract.
type TelemetryBus struct {
	mq  MessageQueue
	log *zap.Logger
}

// NewTelemetryBus wraps mq (typically a NATSQueue) for state-change
// fan-out.
func NewTelemetryBus(mq MessageQueue, log *zap.Logger) *TelemetryBus {
	return &TelemetryBus{mq: mq, log: log}
}

// Publish encodes and fans out ev. Safe to call from the kernel's
// single-threaded event loop; it does not block on subscriber delivery.
func (b *TelemetryBus) Publish(ev StateChangeEvent) {
	if b == nil || b.mq == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		b.log.Warn("telemetry bus: marshal state-change event failed", zap.Error(err))
		return
	}
	if err := b.mq.Publish(telemetrySubject, data); err != nil {
		b.log.Warn("telemetry bus: publish failed", zap.Error(err))
	}
}
