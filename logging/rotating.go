package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingWriter appends to one log file per ISO week and removes files
// older than the retention window. Rotation happens lazily on write.
type RotatingWriter struct {
	logDir    string
	retention time.Duration

	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	lastCleanup time.Time
}

// NewRotatingWriter creates a writer rotating weekly under logDir.
func NewRotatingWriter(logDir string, retentionWeeks int) *RotatingWriter {
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}
	return &RotatingWriter{
		logDir:    logDir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
	}
}

// weekKey returns the ISO week key in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	now := time.Now()
	week := weekKey(now)
	if rw.currentFile == nil || week != rw.currentWeek {
		if err := rw.rotate(week); err != nil {
			return 0, err
		}
	}
	if now.Sub(rw.lastCleanup) > 24*time.Hour {
		rw.cleanup(now)
		rw.lastCleanup = now
	}
	return rw.currentFile.Write(p)
}

// Close closes the current log file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.currentFile == nil {
		return nil
	}
	err := rw.currentFile.Close()
	rw.currentFile = nil
	return err
}

// rotate opens the log file for the target week (caller holds the lock).
func (rw *RotatingWriter) rotate(week string) error {
	if rw.currentFile != nil {
		if err := rw.currentFile.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file during rotation:", err)
		}
		rw.currentFile = nil
	}
	if err := os.MkdirAll(rw.logDir, 0750); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", rw.logDir, err)
	}
	path := filepath.Join(rw.logDir, "app-"+week+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	rw.currentFile = file
	rw.currentWeek = week
	return nil
}

// cleanup removes log files past the retention window.
func (rw *RotatingWriter) cleanup(now time.Time) {
	entries, err := os.ReadDir(rw.logDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > rw.retention {
			os.Remove(filepath.Join(rw.logDir, entry.Name()))
		}
	}
}

// SetupLogger builds the application logger: human-readable text on
// stderr plus JSON lines in weekly rotating files.
func SetupLogger(logDir string, retentionWeeks int, level string) *slog.Logger {
	lvl := parseLevel(level)
	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})

	if logDir == "" {
		return slog.New(console)
	}
	fileWriter := NewRotatingWriter(logDir, retentionWeeks)
	fileHandler := slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: lvl})
	return slog.New(newTeeHandler(console, fileHandler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// teeHandler duplicates records to both handlers.
type teeHandler struct {
	handlers []slog.Handler
}

func newTeeHandler(handlers ...slog.Handler) *teeHandler {
	return &teeHandler{handlers: handlers}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}

var _ io.WriteCloser = (*RotatingWriter)(nil)
