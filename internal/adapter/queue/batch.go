package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/scheduling"
	"github.com/nexabus/evsim/internal/simparams"
)

// CaseEnvelope is the wire shape of one simulation.Case dispatched onto
// the batch work queue: every field a worker needs to reconstruct the
// case's grid and run it, minus the DistanceOracle (workers share one
// cache-through oracle rather than serializing it per case, per
// SPEC_FULL.md §5 "the distance-oracle cache is the one structure workers
// legitimately share").
type CaseEnvelope struct {
	Name            string                        `json:"name"`
	Points          []grid.Point                   `json:"points"`
	Segments        []grid.Segment                 `json:"segments"`
	Params          simparams.Params               `json:"params"`
	SchedulerParams simparams.SchedulerParams      `json:"scheduler_params"`
	Timetable       []scheduling.PassengerTrip     `json:"timetable"`
	Multiplier      float64                        `json:"multiplier"`
}

// Grid rebuilds the case's *grid.Grid from its serialized points/segments.
func (e CaseEnvelope) Grid() *grid.Grid {
	g := grid.New()
	for _, p := range e.Points {
		g.AddPoint(p)
	}
	for _, s := range e.Segments {
		g.AddSegment(s)
	}
	return g
}

const batchSubject = "evsim.batch_case"

// BatchQueue distributes batch simulation cases across worker goroutines
// via a MessageQueue (typically RabbitMQQueue), per SPEC_FULL.md §2's
// "Batch work queue | distributes batch simulation cases across workers |
// rabbitmq/amqp091-go".
type BatchQueue struct {
	mq  MessageQueue
	log *zap.Logger
}

// NewBatchQueue wraps mq for batch case dispatch.
func NewBatchQueue(mq MessageQueue, log *zap.Logger) *BatchQueue {
	return &BatchQueue{mq: mq, log: log}
}

// Enqueue publishes one case envelope for a worker to pick up.
func (q *BatchQueue) Enqueue(env CaseEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("batch queue: marshal case %q: %w", env.Name, err)
	}
	return q.mq.Publish(batchSubject, data)
}

// Consume registers handle to run for every case envelope a worker pops
// off the queue. handle is responsible for running the case and reporting
// its own result; Consume itself never blocks past subscription setup.
func (q *BatchQueue) Consume(handle func(CaseEnvelope)) error {
	return q.mq.Subscribe(batchSubject, func(data []byte) error {
		var env CaseEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			q.log.Error("batch queue: malformed case envelope", zap.Error(err))
			return err
		}
		handle(env)
		return nil
	})
}

// workerPool runs n workers pulling from consume, each isolated from the
// others except for the shared oracle the caller closes over — grounded on
// SPEC_FULL.md §5's worker-pool description.
type workerPool struct {
	n  int
	wg sync.WaitGroup
}

// RunWorkers starts n goroutines each calling consume once to register one
// subscription. consume returns after subscription setup and deliveries run
// on the subscription's own goroutine, so this yields n concurrent
// consumers.
func RunWorkers(n int, consume func() error, log *zap.Logger) {
	if n <= 0 {
		n = 1
	}
	p := &workerPool{n: n}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			if err := consume(); err != nil {
				log.Error("batch worker subscription failed", zap.Int("worker", id), zap.Error(err))
			}
		}(i)
	}
}
