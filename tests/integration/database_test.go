package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TestDatabase_EvaluationRunCRUD tests evaluation_runs database operations.
func TestDatabase_EvaluationRunCRUD(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.DB)

	ctx := context.Background()
	runID := uuid.New().String()
	vehicleIDs := pq.StringArray{"bus-1", "bus-2"}

	// Create run
	t.Run("CreateRun", func(t *testing.T) {
		_, err := env.DB.ExecContext(ctx, `
			INSERT INTO evaluation_runs (run_id, case_name, total_energy_kwh, total_distance_km, total_driver_time_s, vehicle_ids, vehicles_json, facilities_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, runID, "morning-peak", 184.5, 96.2, int64(14400), vehicleIDs, `[{"vehicle_id":"bus-1"}]`, `[{"facility_id":"depot-1"}]`, time.Now())

		if err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	})

	// Read run
	t.Run("ReadRun", func(t *testing.T) {
		var id, caseName string
		var energy float64
		err := env.DB.QueryRowContext(ctx, `
			SELECT run_id, case_name, total_energy_kwh FROM evaluation_runs WHERE run_id = $1
		`, runID).Scan(&id, &caseName, &energy)

		if err != nil {
			t.Fatalf("Failed to read run: %v", err)
		}

		if caseName != "morning-peak" {
			t.Errorf("Expected case_name 'morning-peak', got '%s'", caseName)
		}

		if energy != 184.5 {
			t.Errorf("Expected total_energy_kwh 184.5, got %f", energy)
		}
	})

	// Update run (overwrite, mirroring EvaluationRepository.Save's upsert)
	t.Run("UpdateRun", func(t *testing.T) {
		_, err := env.DB.ExecContext(ctx, `
			UPDATE evaluation_runs SET total_energy_kwh = $1 WHERE run_id = $2
		`, 200.0, runID)

		if err != nil {
			t.Fatalf("Failed to update run: %v", err)
		}

		var energy float64
		env.DB.QueryRowContext(ctx, `SELECT total_energy_kwh FROM evaluation_runs WHERE run_id = $1`, runID).Scan(&energy)

		if energy != 200.0 {
			t.Errorf("Expected total_energy_kwh 200.0, got %f", energy)
		}
	})

	// Delete run
	t.Run("DeleteRun", func(t *testing.T) {
		_, err := env.DB.ExecContext(ctx, `DELETE FROM evaluation_runs WHERE run_id = $1`, runID)
		if err != nil {
			t.Fatalf("Failed to delete run: %v", err)
		}

		var count int
		env.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluation_runs WHERE run_id = $1`, runID).Scan(&count)

		if count != 0 {
			t.Error("Run should have been deleted")
		}
	})
}

// TestDatabase_EvaluationRunVehicleArray tests the vehicle_ids text[] column
// and jsonb round-trip used by EvaluationRepository.Save/Get.
func TestDatabase_EvaluationRunVehicleArray(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.DB)

	ctx := context.Background()
	runID := uuid.New().String()
	want := pq.StringArray{"bus-1", "bus-2", "bus-3"}

	_, err := env.DB.ExecContext(ctx, `
		INSERT INTO evaluation_runs (run_id, case_name, vehicle_ids, vehicles_json, facilities_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, runID, "fleet-3", want, `[]`, `[]`, time.Now())
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	var got pq.StringArray
	err = env.DB.QueryRowContext(ctx, `SELECT vehicle_ids FROM evaluation_runs WHERE run_id = $1`, runID).Scan(&got)
	if err != nil {
		t.Fatalf("Failed to read vehicle_ids: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d vehicle ids, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected vehicle id %q at index %d, got %q", want[i], i, got[i])
		}
	}
}

// TestDatabase_EvaluationRunHistory exercises listing runs by case name,
// mirroring a batch submission followed by several inline runs.
func TestDatabase_EvaluationRunHistory(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.DB)

	ctx := context.Background()
	caseName := "evening-peak"

	for i := 0; i < 3; i++ {
		_, err := env.DB.ExecContext(ctx, `
			INSERT INTO evaluation_runs (run_id, case_name, total_energy_kwh, vehicle_ids, vehicles_json, facilities_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), caseName, float64(100+i), pq.StringArray{}, `[]`, `[]`, time.Now())
		if err != nil {
			t.Fatalf("Failed to seed run %d: %v", i, err)
		}
	}

	rows, err := env.DB.QueryContext(ctx, `
		SELECT run_id, total_energy_kwh FROM evaluation_runs WHERE case_name = $1 ORDER BY created_at DESC
	`, caseName)
	if err != nil {
		t.Fatalf("Failed to query history: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}

	if count != 3 {
		t.Errorf("Expected 3 runs for case %q, got %d", caseName, count)
	}
}

// TestDatabase_Transactions tests database transactions (ACID) against
// evaluation_runs.
func TestDatabase_Transactions(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.DB)

	ctx := context.Background()

	// Test rollback
	t.Run("Rollback", func(t *testing.T) {
		tx, err := env.DB.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}

		runID := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO evaluation_runs (run_id, case_name, vehicle_ids, vehicles_json, facilities_json, created_at)
			VALUES ($1, 'rollback-case', $2, '[]', '[]', $3)
		`, runID, pq.StringArray{}, time.Now())

		if err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("Failed to rollback: %v", err)
		}

		var count int
		env.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluation_runs WHERE run_id = $1`, runID).Scan(&count)

		if count != 0 {
			t.Error("Run should not exist after rollback")
		}
	})

	// Test commit
	t.Run("Commit", func(t *testing.T) {
		tx, err := env.DB.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}

		runID := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO evaluation_runs (run_id, case_name, vehicle_ids, vehicles_json, facilities_json, created_at)
			VALUES ($1, 'commit-case', $2, '[]', '[]', $3)
		`, runID, pq.StringArray{}, time.Now())

		if err != nil {
			tx.Rollback()
			t.Fatalf("Failed to insert: %v", err)
		}

		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}

		var count int
		env.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluation_runs WHERE run_id = $1`, runID).Scan(&count)

		if count != 1 {
			t.Error("Run should exist after commit")
		}
	})
}

// skipIfNoDatabase skips the test if database is not available
func skipIfNoDatabase(t *testing.T, db *sql.DB) {
	if db == nil {
		t.Skip("Database not available")
	}
}
