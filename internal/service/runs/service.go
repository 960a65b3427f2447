// Package runs is the facade's run-lifecycle service: it accepts a case
// definition over HTTP, runs it against internal/simulation.Facade, and
// keeps its status and evaluation queryable for async polling, per
// SPEC_FULL.md §4.11's "POST /v1/runs ... GET /v1/runs/:id ... GET
// /v1/runs/:id/evaluation". Grounded on the teacher's service/transaction
// package shape (submit, look up by ID, background completion) rebuilt
// around a simulation run instead of a charging session.
package runs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/adapter/queue"
	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/observability/telemetry"
	"github.com/nexabus/evsim/internal/scheduling"
	"github.com/nexabus/evsim/internal/simparams"
	"github.com/nexabus/evsim/internal/simulation"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CaseRequest is the wire shape POST /v1/runs and POST /v1/batches accept:
// a grid, a parameter record, a schedule, and a timetable.
type CaseRequest struct {
	Name            string                     `json:"name"`
	Points          []grid.Point               `json:"points"`
	Segments        []grid.Segment             `json:"segments"`
	Params          simparams.Params           `json:"params"`
	SchedulerParams simparams.SchedulerParams  `json:"scheduler_params"`
	Timetable       []scheduling.PassengerTrip `json:"timetable"`
	Multiplier      float64                    `json:"multiplier"`
}

func (r CaseRequest) buildGrid() *grid.Grid {
	g := grid.New()
	for _, p := range r.Points {
		g.AddPoint(p)
	}
	for _, s := range r.Segments {
		g.AddSegment(s)
	}
	return g
}

// Run is one tracked simulation run's current state.
type Run struct {
	ID       string                         `json:"id"`
	CaseName string                         `json:"case_name"`
	Status   Status                         `json:"status"`
	Error    string                         `json:"error,omitempty"`
	Eval     *simulation.EvaluationRecord   `json:"evaluation,omitempty"`
}

// EvaluationStore persists completed evaluations, typically
// internal/adapter/storage/postgres.EvaluationRepository.
type EvaluationStore interface {
	Save(ctx context.Context, runID, caseName string, ev *simulation.EvaluationRecord) error
}

// Service runs simulation cases and tracks their status in memory, mirroring
// completed runs into store and publishing lifecycle events onto bus when
// both are configured (either may be nil).
type Service struct {
	log    *zap.Logger
	oracle grid.DistanceOracle
	store  EvaluationStore
	bus    *queue.TelemetryBus

	mu   sync.RWMutex
	runs map[string]*Run
}

// NewService builds a run service. oracle is shared across every run this
// service submits — SPEC_FULL.md §5's "the distance-oracle cache is the one
// structure workers legitimately share".
func NewService(log *zap.Logger, oracle grid.DistanceOracle, store EvaluationStore, bus *queue.TelemetryBus) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log, oracle: oracle, store: store, bus: bus, runs: make(map[string]*Run)}
}

// Submit registers req as a new run and starts it in the background,
// returning immediately with the assigned ID.
func (s *Service) Submit(req CaseRequest) string {
	id := uuid.NewString()
	run := &Run{ID: id, CaseName: req.Name, Status: StatusRunning}

	s.mu.Lock()
	s.runs[id] = run
	s.mu.Unlock()

	telemetry.RecordRunSubmitted()
	if s.bus != nil {
		s.bus.Publish(queue.StateChangeEvent{RunID: id, Kind: "run_submitted"})
	}

	go s.execute(id, req)

	return id
}

func (s *Service) execute(id string, req CaseRequest) {
	start := time.Now()
	f, err := simulation.New(s.log, req.buildGrid(), s.oracle, req.Params, req.SchedulerParams, req.Timetable)
	if err != nil {
		s.finish(id, nil, err, time.Since(start))
		return
	}
	ev, err := f.Run()
	s.finish(id, ev, err, time.Since(start))
}

func (s *Service) finish(id string, ev *simulation.EvaluationRecord, err error, elapsed time.Duration) {
	s.mu.Lock()
	run, ok := s.runs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	} else {
		run.Status = StatusCompleted
		run.Eval = ev
	}
	caseName := run.CaseName
	s.mu.Unlock()

	telemetry.RecordRunCompleted(err == nil, elapsed.Seconds(), evalEnergy(ev))
	if s.bus != nil {
		kind := "run_completed"
		if err != nil {
			kind = "run_failed"
		}
		s.bus.Publish(queue.StateChangeEvent{RunID: id, Kind: kind})
	}

	if err == nil && s.store != nil {
		if serr := s.store.Save(context.Background(), id, caseName, ev); serr != nil {
			s.log.Error("persisting evaluation failed", zap.String("run_id", id), zap.Error(serr))
		}
	}
}

func evalEnergy(ev *simulation.EvaluationRecord) float64 {
	if ev == nil {
		return 0
	}
	return ev.TotalEnergyKWh
}

// Get returns a run's current state.
func (s *Service) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	cp := *run
	return &cp, true
}

// Evaluation returns a completed run's evaluation record.
func (s *Service) Evaluation(id string) (*simulation.EvaluationRecord, error) {
	run, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("runs: unknown run %q", id)
	}
	if run.Status != StatusCompleted {
		return nil, fmt.Errorf("runs: run %q is %s, not completed", id, run.Status)
	}
	return run.Eval, nil
}
