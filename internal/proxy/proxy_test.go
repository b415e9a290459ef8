package proxy

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// testStore bundles the three repositories on one in-memory database.
type testStore struct {
	db        *sql.DB
	nodes     *node.SQLiteRepository
	sensors   *node.SQLiteSensorRepository
	firmwares *firmware.SQLiteRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
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
		CREATE TABLE firmwares (
			firmware_type    INTEGER NOT NULL,
			firmware_version INTEGER NOT NULL,
			name             TEXT    NOT NULL DEFAULT '',
			blocks           INTEGER NOT NULL DEFAULT 0,
			crc              INTEGER NOT NULL DEFAULT 0,
			data             BLOB    NOT NULL,
			PRIMARY KEY (firmware_type, firmware_version)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testStore{
		db:        db,
		nodes:     node.NewSQLiteRepository(db),
		sensors:   node.NewSQLiteSensorRepository(db),
		firmwares: firmware.NewSQLiteRepository(db),
	}
}

// testLogger satisfies Logger over t.Logf so handler noise lands in the
// test output.
type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...any) { l.t.Logf("DEBUG %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...any)  { l.t.Logf("INFO %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...any)  { l.t.Logf("WARN %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...any) { l.t.Logf("ERROR %s %v", msg, args) }

// runLoop starts a handler loop and stops it on test cleanup.
func runLoop(t *testing.T, fn func(context.Context)) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("handler loop did not stop")
		}
	})
}

// expectLine asserts the next line on ch within a timeout.
func expectLine(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Errorf("received %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no line received, want %q", want)
	}
}

// expectNoLine asserts nothing arrives on ch for a short window.
func expectNoLine(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case got := <-ch:
		t.Errorf("unexpected line %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// nodeWithID returns a default node record for seeding.
func nodeWithID(id uint8) node.Node {
	return node.NewNode(id)
}
