// Package telemetry registers the Prometheus gauges/counters/histograms
// the simulation facade and its ambient stack update, per SPEC_FULL.md §2's
// "Metrics | kernel/queue/facility gauges and counters |
// prometheus/client_golang". Grounded on the teacher's metrics.go, rebuilt
// around this domain's own events rather than charging-session billing.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks completed simulation runs by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evsim_runs_total",
		Help: "Total simulation runs by outcome",
	}, []string{"status"}) // submitted, completed, failed

	// RunDuration tracks wall-clock time spent running a facade to
	// completion.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evsim_run_duration_seconds",
		Help:    "Wall-clock duration of a simulation run",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	})

	// BatchCasesTotal tracks batch cases dispatched by outcome.
	BatchCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evsim_batch_cases_total",
		Help: "Total batch simulation cases by outcome",
	}, []string{"status"})

	// FacilityOccupancy tracks the last-observed slots-in-use at a
	// charging facility.
	FacilityOccupancy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evsim_facility_occupancy",
		Help: "Slots in use at a charging facility",
	}, []string{"facility_id"})

	// EnergyDispatchedTotal tracks cumulative energy moved through every
	// completed run, in kWh.
	EnergyDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evsim_energy_dispatched_kwh_total",
		Help: "Total energy dispatched across all completed runs, in kWh",
	})

	// DistanceOracleRequestsTotal tracks cache-through distance oracle
	// lookups by result.
	DistanceOracleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evsim_distance_oracle_requests_total",
		Help: "Total distance oracle lookups by result",
	}, []string{"result"}) // cache_hit, cache_miss_resolved, cache_miss_unresolved

	// HTTPRequestDuration tracks facade HTTP request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evsim_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path", "status"})

	// HTTPRequestsTotal tracks total facade HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evsim_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// EvaluationStoreLatency tracks evaluation-record persistence latency.
	EvaluationStoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evsim_evaluation_store_latency_seconds",
		Help:    "Evaluation store query latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}, []string{"operation"})

	// QueueMessagesTotal tracks telemetry/batch queue messages.
	QueueMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evsim_queue_messages_total",
		Help: "Total message queue messages",
	}, []string{"topic", "status"}) // status: published, consumed, failed
)

// RecordRunSubmitted increments the submitted-run counter.
func RecordRunSubmitted() {
	RunsTotal.WithLabelValues("submitted").Inc()
}

// RecordRunCompleted updates metrics after a run finishes, successfully or
// not.
func RecordRunCompleted(ok bool, durationSeconds float64, energyKWh float64) {
	status := "completed"
	if !ok {
		status = "failed"
	}
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(durationSeconds)
	if ok {
		EnergyDispatchedTotal.Add(energyKWh)
	}
}

// RecordBatchCase increments the batch-case counter for one case's
// outcome.
func RecordBatchCase(ok bool) {
	status := "completed"
	if !ok {
		status = "failed"
	}
	BatchCasesTotal.WithLabelValues(status).Inc()
}

// RecordFacilityOccupancy sets the last-observed occupancy for a facility.
func RecordFacilityOccupancy(facilityID string, inUse int) {
	FacilityOccupancy.WithLabelValues(facilityID).Set(float64(inUse))
}

// RecordDistanceOracleLookup records a cache-through oracle lookup's
// result.
func RecordDistanceOracleLookup(result string) {
	DistanceOracleRequestsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, durationSeconds float64) {
	statusStr := fmt.Sprintf("%d", status)
	HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(durationSeconds)
}
