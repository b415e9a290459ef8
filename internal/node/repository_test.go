package node

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the nodes and
// sensors tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE nodes (
			node_id                  INTEGER PRIMARY KEY,
			node_name                TEXT    NOT NULL DEFAULT 'New Node',
			firmware_type            INTEGER NOT NULL DEFAULT 0,
			firmware_version         INTEGER NOT NULL DEFAULT 0,
			desired_firmware_type    INTEGER NOT NULL DEFAULT 0,
			desired_firmware_version INTEGER NOT NULL DEFAULT 0,
			auto_update              INTEGER NOT NULL DEFAULT 0,
			scheduled                INTEGER NOT NULL DEFAULT 0,
			parent_node_id           INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE sensors (
			node_id         INTEGER NOT NULL,
			child_sensor_id INTEGER NOT NULL,
			sensor_type     INTEGER NOT NULL,
			description     TEXT    NOT NULL DEFAULT '',
			PRIMARY KEY (node_id, child_sensor_id),
			FOREIGN KEY (node_id) REFERENCES nodes (node_id) ON DELETE CASCADE
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	n := NewNode(1)
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "New Node" || got.AutoUpdate || got.Scheduled || got.ParentNodeID != 0 {
		t.Errorf("Get = %+v", got)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.Get(context.Background(), 9); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Get error = %v, want ErrNodeNotFound", err)
	}
}

func TestRepository_NextFreeID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	// Empty table: the least id is 1.
	id, err := repo.NextFreeID(ctx)
	if err != nil {
		t.Fatalf("NextFreeID: %v", err)
	}
	if id != 1 {
		t.Errorf("NextFreeID = %d, want 1", id)
	}

	// With 1 and 3 taken, the least free id is 2.
	for _, taken := range []uint8{1, 3} {
		n := NewNode(taken)
		if err := repo.Create(ctx, &n); err != nil {
			t.Fatalf("Create(%d): %v", taken, err)
		}
	}
	id, err = repo.NextFreeID(ctx)
	if err != nil {
		t.Fatalf("NextFreeID: %v", err)
	}
	if id != 2 {
		t.Errorf("NextFreeID = %d, want 2", id)
	}
}

func TestRepository_NextFreeIDExhausted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	for id := int(MinNodeID); id <= int(MaxNodeID); id++ {
		if _, err := db.Exec(`INSERT INTO nodes (node_id) VALUES (?)`, id); err != nil {
			t.Fatalf("seeding node %d: %v", id, err)
		}
	}

	if _, err := repo.NextFreeID(ctx); !errors.Is(err, ErrNoFreeNodeID) {
		t.Errorf("NextFreeID error = %v, want ErrNoFreeNodeID", err)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	n := NewNode(5)
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n.Name = "Garage Relay"
	n.DesiredFirmwareType = 10
	n.DesiredFirmwareVersion = 2
	n.AutoUpdate = true
	if err := repo.Update(ctx, &n); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Garage Relay" || got.DesiredFirmwareType != 10 || !got.AutoUpdate {
		t.Errorf("Get after update = %+v", got)
	}

	missing := NewNode(99)
	if err := repo.Update(ctx, &missing); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNodeNotFound", err)
	}
}

func TestRepository_UpdateReportedFirmware(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	n := NewNode(1)
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateReportedFirmware(ctx, 1, 10, 1); err != nil {
		t.Fatalf("UpdateReportedFirmware: %v", err)
	}

	got, _ := repo.Get(ctx, 1)
	if got.FirmwareType != 10 || got.FirmwareVersion != 1 {
		t.Errorf("reported firmware = (%d,%d)", got.FirmwareType, got.FirmwareVersion)
	}
}

func TestRepository_SetParent(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	n := NewNode(7)
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SetParent(ctx, 7, 3); err != nil {
		t.Fatalf("SetParent: %v", err)
	}

	got, _ := repo.Get(ctx, 7)
	if got.ParentNodeID != 3 {
		t.Errorf("ParentNodeID = %d, want 3", got.ParentNodeID)
	}
}

func TestRepository_DeleteCascadesSensors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	sensors := NewSQLiteSensorRepository(db)
	ctx := context.Background()

	n := NewNode(2)
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sensors.Upsert(ctx, &Sensor{NodeID: 2, ChildSensorID: 1, Type: 3}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sensors.Get(ctx, 2, 1); !errors.Is(err, ErrSensorNotFound) {
		t.Errorf("sensor survived node delete: %v", err)
	}

	if err := repo.Delete(ctx, 2); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second Delete error = %v, want ErrNodeNotFound", err)
	}
}
