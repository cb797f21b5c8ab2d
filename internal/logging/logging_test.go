package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"remotedb/internal/config"
)

func newTestLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	l := New(&config.Config{
		EnableLogging:   true,
		LogLevel:        level,
		LogDir:          dir,
		KeepLogsForDays: 30,
	})
	l.now = func() time.Time { return time.Date(2025, 6, 10, 14, 30, 15, 0, time.UTC) }
	return l, dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestInfoWritesDailyAPIFile(t *testing.T) {
	l, dir := newTestLogger(t, config.LogAll)

	l.Info("192.168.1.100 (standard) executed query on 'game_db': SELECT * FROM scores")

	got := readFile(t, filepath.Join(dir, "api_2025-06-10.log"))
	want := "[2025-06-10 14:30:15] 192.168.1.100 (standard) executed query on 'game_db': SELECT * FROM scores\n"
	if got != want {
		t.Errorf("log line = %q, want %q", got, want)
	}
}

func TestErrorWritesErrorFile(t *testing.T) {
	l, dir := newTestLogger(t, config.LogAll)

	l.Error("Database connection failed for keyspace 'game_db'")

	got := readFile(t, filepath.Join(dir, "errors_2025-06-10.log"))
	if !strings.Contains(got, "Database connection failed") {
		t.Errorf("error log = %q, missing message", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "api_2025-06-10.log")); !os.IsNotExist(err) {
		t.Error("error entry also created the api log file")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	l, dir := newTestLogger(t, config.LogAll)

	l.Info("first")
	l.Info("second")

	got := readFile(t, filepath.Join(dir, "api_2025-06-10.log"))
	first := strings.Index(got, "first")
	second := strings.Index(got, "second")
	if first < 0 || second < 0 || second < first {
		t.Errorf("entries out of order: %q", got)
	}
}

func TestErrorLevelSuppressesInfo(t *testing.T) {
	l, dir := newTestLogger(t, config.LogError)

	l.Info("routine event")
	l.Warning("suspicious event")
	l.Error("broken")

	if _, err := os.Stat(filepath.Join(dir, "api_2025-06-10.log")); !os.IsNotExist(err) {
		t.Error("ERROR level still wrote non-error entries")
	}
	got := readFile(t, filepath.Join(dir, "errors_2025-06-10.log"))
	if !strings.Contains(got, "broken") {
		t.Errorf("errors file = %q, missing error entry", got)
	}
}

func TestNoneLevelWritesNothing(t *testing.T) {
	l, dir := newTestLogger(t, config.LogNone)

	l.Info("a")
	l.Error("b")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("NONE level created %d files", len(entries))
	}
}

func TestDisabledAndNilLoggerAreNoOps(t *testing.T) {
	dir := t.TempDir()
	l := New(&config.Config{EnableLogging: false, LogLevel: config.LogAll, LogDir: dir})
	l.Info("a")

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("disabled logger created %d files", len(entries))
	}

	var nilLogger *Logger
	nilLogger.Info("must not panic")
	nilLogger.CleanupOldLogs()
}

func TestCleanupOldLogs(t *testing.T) {
	l, dir := newTestLogger(t, config.LogAll)
	l.now = time.Now

	oldPath := filepath.Join(dir, "api_2025-01-01.log")
	freshPath := filepath.Join(dir, "api_recent.log")
	otherPath := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldPath, freshPath, otherPath} {
		if err := os.WriteFile(p, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-31 * 24 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(otherPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	l.CleanupOldLogs()

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("stale log file survived cleanup")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Errorf("fresh log file deleted: %v", err)
	}
	if _, err := os.Stat(otherPath); err != nil {
		t.Errorf("non-log file deleted: %v", err)
	}
}

func TestCleanupKeepForever(t *testing.T) {
	dir := t.TempDir()
	l := New(&config.Config{
		EnableLogging:   true,
		LogLevel:        config.LogAll,
		LogDir:          dir,
		KeepLogsForDays: 0,
	})

	oldPath := filepath.Join(dir, "api_2020-01-01.log")
	if err := os.WriteFile(oldPath, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-365 * 24 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	l.CleanupOldLogs()

	if _, err := os.Stat(oldPath); err != nil {
		t.Errorf("retention 0 deleted a log file: %v", err)
	}
}
