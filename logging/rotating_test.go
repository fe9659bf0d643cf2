package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingWriterWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rw := NewRotatingWriter(dir, 4)
	defer rw.Close()

	message := []byte("first line\n")
	n, err := rw.Write(message)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(message) {
		t.Errorf("Write returned %d, want %d", n, len(message))
	}

	expected := filepath.Join(dir, "app-"+weekKey(time.Now())+".log")
	content, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected log file %s: %v", expected, err)
	}
	if string(content) != "first line\n" {
		t.Errorf("Log file content = %q", content)
	}
}

func TestRotatingWriterAppends(t *testing.T) {
	dir := t.TempDir()
	rw := NewRotatingWriter(dir, 4)
	defer rw.Close()

	rw.Write([]byte("one\n"))
	rw.Write([]byte("two\n"))

	content, err := os.ReadFile(filepath.Join(dir, "app-"+weekKey(time.Now())+".log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != "one\ntwo\n" {
		t.Errorf("Log file content = %q, want both lines", content)
	}
}

func TestRotatingWriterCleanup(t *testing.T) {
	dir := t.TempDir()
	rw := NewRotatingWriter(dir, 1)

	stale := filepath.Join(dir, "app-2020-W01.log")
	if err := os.WriteFile(stale, []byte("old\n"), 0640); err != nil {
		t.Fatalf("Failed to create stale log: %v", err)
	}
	old := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("Failed to age stale log: %v", err)
	}

	unrelated := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep\n"), 0640); err != nil {
		t.Fatalf("Failed to create unrelated file: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("Failed to age unrelated file: %v", err)
	}

	rw.cleanup(time.Now())

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Stale log file should have been removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Cleanup should only touch app-*.log files")
	}
}

func TestWeekKeyFormat(t *testing.T) {
	key := weekKey(time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC))
	if key != "2025-W02" {
		t.Errorf("weekKey = %q, want 2025-W02", key)
	}
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	logger := SetupLogger("", 4, "info")
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
}

func TestSetupLoggerWithFiles(t *testing.T) {
	dir := t.TempDir()
	logger := SetupLogger(dir, 4, "debug")
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}

	logger.Info("catalogue loaded", "count", 42)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read log dir: %v", err)
	}
	found := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "app-") && strings.HasSuffix(entry.Name(), ".log") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a weekly log file after logging")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
