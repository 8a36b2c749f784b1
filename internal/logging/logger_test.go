package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// readEntries parses the JSON log file into one map per line.
func readEntries(t *testing.T, dir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "fluxmap.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	var entries []map[string]any
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func newTestLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	logger, err := NewLogger(dir, level, RotationConfig{})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, dir
}

func TestNewLogger_CreatesLogFile(t *testing.T) {
	logger, dir := newTestLogger(t, "INFO")
	logger.Info("ready")

	if _, err := os.Stat(filepath.Join(dir, "fluxmap.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"DEBUG", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"INFO", []string{"INFO", "WARN", "ERROR"}},
		{"WARN", []string{"WARN", "ERROR"}},
		{"ERROR", []string{"ERROR"}},
		{"nonsense", []string{"INFO", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, dir := newTestLogger(t, tt.level)
			logger.Debug("debug entry")
			logger.Info("info entry")
			logger.Warn("warn entry")
			logger.Error("error entry")

			entries := readEntries(t, dir)
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, want := range tt.want {
				if got := entries[i]["level"]; got != want {
					t.Errorf("entries[%d].level = %v, want %s", i, got, want)
				}
			}
		})
	}
}

func TestLogger_AttributePropagation(t *testing.T) {
	logger, dir := newTestLogger(t, "INFO")

	repoLogger := logger.WithComponent("ingest").WithNode("worker_2").WithRepo("acme/widgets")
	repoLogger.Info("fragment dispatched", "file", "pkg/auth/token.go")

	// The parent logger must not pick up the child's attributes.
	logger.Info("tick")

	entries := readEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	for key, want := range map[string]string{
		"component": "ingest",
		"node":      "worker_2",
		"repo":      "acme/widgets",
		"file":      "pkg/auth/token.go",
	} {
		if got := first[key]; got != want {
			t.Errorf("entry[%q] = %v, want %q", key, got, want)
		}
	}

	if _, ok := entries[1]["component"]; ok {
		t.Error("parent logger inherited the child's component attribute")
	}
}

func TestLogger_With(t *testing.T) {
	logger, dir := newTestLogger(t, "INFO")

	logger.With("slot", "repo_slot_1", "port", 8091).Info("health applied")

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0]["slot"]; got != "repo_slot_1" {
		t.Errorf(`entry["slot"] = %v, want repo_slot_1`, got)
	}
	if got := entries[0]["port"]; got != float64(8091) {
		t.Errorf(`entry["port"] = %v, want 8091`, got)
	}
}

func TestLogger_StderrWhenNoDirectory(t *testing.T) {
	logger, err := NewLogger("", "INFO", RotationConfig{})
	if err != nil {
		t.Fatalf("NewLogger(\"\") error = %v", err)
	}
	// Closing a stderr logger is a no-op, not an error.
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.WithComponent("sim").WithNode("mixing_buffer").Info("discarded")
	logger.Error("also discarded", "error", "nope")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "INFO", RotationConfig{})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("one entry")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestLogger_ConcurrentChildren(t *testing.T) {
	logger, dir := newTestLogger(t, "INFO")

	var wg sync.WaitGroup
	nodes := []string{"fetcher", "cache", "auditor", "embedder"}
	for _, node := range nodes {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			child := logger.WithComponent("sim").WithNode(node)
			for i := 0; i < 50; i++ {
				child.Info("state changed", "state", "active")
			}
		}(node)
	}
	wg.Wait()

	entries := readEntries(t, dir)
	if len(entries) != len(nodes)*50 {
		t.Fatalf("got %d entries, want %d", len(entries), len(nodes)*50)
	}
	for _, e := range entries {
		if e["node"] == nil {
			t.Fatal("entry lost its node attribute under concurrency")
		}
	}
}
