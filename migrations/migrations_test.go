package migrations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/database"

	_ "github.com/tsathishkumar/myscontroller-go/migrations"
)

// TestInitialSchemaApplies runs the real embedded migrations against a
// fresh database and exercises the three tables.
func TestInitialSchemaApplies(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO nodes (node_id) VALUES (1)`); err != nil {
		t.Errorf("nodes table: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO sensors (node_id, child_sensor_id, sensor_type) VALUES (1, 0, 3)`); err != nil {
		t.Errorf("sensors table: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO firmwares (firmware_type, firmware_version, data) VALUES (10, 2, x'FF')`); err != nil {
		t.Errorf("firmwares table: %v", err)
	}

	// Deleting a node cascades to its sensors.
	if _, err := db.ExecContext(ctx, `DELETE FROM nodes WHERE node_id = 1`); err != nil {
		t.Fatalf("deleting node: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensors`).Scan(&count); err != nil {
		t.Fatalf("counting sensors: %v", err)
	}
	if count != 0 {
		t.Errorf("sensor count after cascade = %d, want 0", count)
	}

	// Defaults match the auto-created node record.
	if _, err := db.ExecContext(ctx, `INSERT INTO nodes (node_id) VALUES (2)`); err != nil {
		t.Fatalf("inserting node: %v", err)
	}
	var name string
	var autoUpdate bool
	err = db.QueryRowContext(ctx,
		`SELECT node_name, auto_update FROM nodes WHERE node_id = 2`).Scan(&name, &autoUpdate)
	if err != nil {
		t.Fatalf("querying node: %v", err)
	}
	if name != "New Node" || autoUpdate {
		t.Errorf("defaults = (%q, %v)", name, autoUpdate)
	}
}
