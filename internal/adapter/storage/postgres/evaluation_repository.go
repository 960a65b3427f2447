// Package postgres persists simulation evaluation records, per
// SPEC_FULL.md §2's "Evaluation store | persists evaluation records,
// per-vehicle energy logs | gorm.io/gorm + gorm.io/driver/postgres,
// lib/pq". Grounded on the teacher's connection.go (kept verbatim) with a
// repository built for this domain's own record shape rather than the
// teacher's charge-point/transaction tables.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nexabus/evsim/internal/simulation"
)

// EvaluationRun is one persisted simulation.EvaluationRecord, keyed by the
// caller-assigned run ID.
type EvaluationRun struct {
	RunID            string `gorm:"primaryKey"`
	CaseName         string
	TotalEnergyKWh   float64
	TotalDistanceKm  float64
	TotalDriverTimeS int64
	VehicleIDs       pq.StringArray `gorm:"type:text[]"`
	VehiclesJSON     string         `gorm:"type:jsonb"`
	FacilitiesJSON   string         `gorm:"type:jsonb"`
	CreatedAt        time.Time
}

func (EvaluationRun) TableName() string { return "evaluation_runs" }

// EvaluationRepository persists and retrieves EvaluationRuns.
type EvaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository builds a repository over an already-open
// connection (see NewConnection).
func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Migrate creates the evaluation_runs table if it doesn't already exist.
func (r *EvaluationRepository) Migrate() error {
	return r.db.AutoMigrate(&EvaluationRun{})
}

// Save persists ev under runID, overwriting any prior record with the
// same ID.
func (r *EvaluationRepository) Save(ctx context.Context, runID, caseName string, ev *simulation.EvaluationRecord) error {
	vehiclesJSON, err := json.Marshal(ev.Vehicles)
	if err != nil {
		return fmt.Errorf("postgres: marshal vehicle records: %w", err)
	}
	facilitiesJSON, err := json.Marshal(ev.Facilities)
	if err != nil {
		return fmt.Errorf("postgres: marshal facility records: %w", err)
	}

	vehicleIDs := make(pq.StringArray, len(ev.Vehicles))
	for i, v := range ev.Vehicles {
		vehicleIDs[i] = v.VehicleID
	}

	row := EvaluationRun{
		RunID:            runID,
		CaseName:         caseName,
		TotalEnergyKWh:   ev.TotalEnergyKWh,
		TotalDistanceKm:  ev.TotalDistanceKm,
		TotalDriverTimeS: ev.TotalDriverTimeS,
		VehicleIDs:       vehicleIDs,
		VehiclesJSON:     string(vehiclesJSON),
		FacilitiesJSON:   string(facilitiesJSON),
		CreatedAt:        time.Now(),
	}

	return r.db.WithContext(ctx).Save(&row).Error
}

// Get retrieves a previously saved run and decodes it back into an
// EvaluationRecord.
func (r *EvaluationRepository) Get(ctx context.Context, runID string) (*simulation.EvaluationRecord, error) {
	var row EvaluationRun
	if err := r.db.WithContext(ctx).First(&row, "run_id = ?", runID).Error; err != nil {
		return nil, err
	}

	ev := &simulation.EvaluationRecord{
		TotalEnergyKWh:   row.TotalEnergyKWh,
		TotalDistanceKm:  row.TotalDistanceKm,
		TotalDriverTimeS: row.TotalDriverTimeS,
	}
	if err := json.Unmarshal([]byte(row.VehiclesJSON), &ev.Vehicles); err != nil {
		return nil, fmt.Errorf("postgres: decode vehicle records: %w", err)
	}
	if err := json.Unmarshal([]byte(row.FacilitiesJSON), &ev.Facilities); err != nil {
		return nil, fmt.Errorf("postgres: decode facility records: %w", err)
	}
	return ev, nil
}
