package simulation

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/grid"
	"github.com/nexabus/evsim/internal/scheduling"
	"github.com/nexabus/evsim/internal/simparams"
)

// Case is one (parameter, schedule, grid) triple of spec.md §4.10's batch
// variant, weighted by Multiplier when its evaluation is combined into the
// batch total (e.g. "this schedule represents 5 identical depot days").
type Case struct {
	Name            string
	Grid            *grid.Grid
	Oracle          grid.DistanceOracle
	Params          simparams.Params
	SchedulerParams simparams.SchedulerParams
	Timetable       []scheduling.PassengerTrip
	Multiplier      float64
}

// CaseResult pairs a case's name with its own evaluation record and any
// error building or running it.
type CaseResult struct {
	Name string
	Eval *EvaluationRecord
	Err  error
}

// BatchResult is a batch run's output: every case's own result plus the
// multiplier-weighted combination of their totals (spec.md §4.10 "combines
// the evaluations weighted by the multipliers").
type BatchResult struct {
	Cases    []CaseResult
	Combined EvaluationRecord
}

// RunBatch runs every case and combines their totals. When parallel is
// set, cases run concurrently, each against its own Facade and its own
// copy of Params.Global — spec.md §5's "each batch case receives its own
// snapshot" — so no case can observe another's global-configuration
// mutation. Global is a plain value type (simparams.GlobalConfig), so the
// per-case Params value already received by RunBatch is an independent
// copy; the caller must not share a *Params across cases.
func RunBatch(log *zap.Logger, cases []Case, parallel bool) BatchResult {
	results := make([]CaseResult, len(cases))

	run := func(i int) {
		c := cases[i]
		f, err := New(log, c.Grid, c.Oracle, c.Params, c.SchedulerParams, c.Timetable)
		if err != nil {
			results[i] = CaseResult{Name: c.Name, Err: err}
			return
		}
		ev, err := f.Run()
		results[i] = CaseResult{Name: c.Name, Eval: ev, Err: err}
	}

	if parallel {
		var wg sync.WaitGroup
		for i := range cases {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				run(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range cases {
			run(i)
		}
	}

	var combined EvaluationRecord
	for i, r := range results {
		if r.Eval == nil {
			continue
		}
		m := cases[i].Multiplier
		if m <= 0 {
			m = 1
		}
		combined.TotalEnergyKWh += r.Eval.TotalEnergyKWh * m
		combined.TotalDistanceKm += r.Eval.TotalDistanceKm * m
		combined.TotalDriverTimeS += int64(float64(r.Eval.TotalDriverTimeS) * m)
	}

	return BatchResult{Cases: results, Combined: combined}
}
