package runs

import (
	"github.com/nexabus/evsim/internal/adapter/queue"
)

// BatchPublisher enqueues case envelopes for the worker pool to consume,
// typically internal/adapter/queue.BatchQueue.
type BatchPublisher interface {
	Enqueue(env queue.CaseEnvelope) error
}

// SubmitBatch enqueues every case in reqs onto publisher instead of running
// them inline, letting RabbitMQ workers pick them up (SPEC_FULL.md §4.11
// "POST /v1/batches ... dispatches cases onto the batch work queue rather
// than running them inline").
func SubmitBatch(publisher BatchPublisher, reqs []CaseRequest) (int, error) {
	accepted := 0
	for _, req := range reqs {
		env := queue.CaseEnvelope{
			Name:            req.Name,
			Points:          req.Points,
			Segments:        req.Segments,
			Params:          req.Params,
			SchedulerParams: req.SchedulerParams,
			Timetable:       req.Timetable,
			Multiplier:      req.Multiplier,
		}
		if err := publisher.Enqueue(env); err != nil {
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}
