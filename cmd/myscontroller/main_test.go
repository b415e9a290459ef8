package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/conf.toml"); err == nil {
		t.Error("run() expected error for missing config")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	// Gateway section is missing entirely.
	if err := os.WriteFile(path, []byte("[Server]\ndatabase_url = \"/tmp/x.db\"\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := run(ctx, path); err == nil {
		t.Error("run() expected error for config without gateway")
	}
}

func TestRun_StartsAndStops(t *testing.T) {
	dir := t.TempDir()
	config := `
[Server]
database_url = "` + filepath.Join(dir, "test.db") + `"
api_listen = "127.0.0.1:0"

[Gateway]
type = "TCP"
port = "127.0.0.1:1"
`
	path := filepath.Join(dir, "conf.toml")
	if err := os.WriteFile(path, []byte(config), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// The gateway address is unreachable; the supervisor keeps retrying
	// while the rest of the process runs. Cancellation must bring
	// everything down.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, path) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not stop on cancellation")
	}
}
