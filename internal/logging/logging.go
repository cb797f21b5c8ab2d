// Package logging implements the gateway's append-only log sink:
// daily-rotating files with a coarse level policy and age-based cleanup.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"remotedb/internal/config"
)

// Logger appends timestamped lines to daily log files in a directory.
// General events go to api_YYYY-MM-DD.log, errors to errors_YYYY-MM-DD.log;
// rotation is purely by filename convention. A nil or disabled Logger is a
// no-op, so callers never have to guard their log calls.
type Logger struct {
	enabled  bool
	level    string
	dir      string
	keepDays int

	// mu serializes appends so concurrent requests never interleave
	// partial lines within one destination.
	mu  sync.Mutex
	now func() time.Time
}

// New builds a Logger from the logging section of cfg.
func New(cfg *config.Config) *Logger {
	return &Logger{
		enabled:  cfg.EnableLogging,
		level:    strings.ToUpper(cfg.LogLevel),
		dir:      cfg.LogDir,
		keepDays: cfg.KeepLogsForDays,
		now:      time.Now,
	}
}

// Info records a general event.
func (l *Logger) Info(msg string) { l.write("INFO", msg) }

// Warning records a suspicious but non-fatal event.
func (l *Logger) Warning(msg string) { l.write("WARNING", msg) }

// Error records a failure; under the ERROR level policy only these are kept.
func (l *Logger) Error(msg string) { l.write("ERROR", msg) }

func (l *Logger) write(level, msg string) {
	if l == nil || !l.enabled {
		return
	}
	switch l.level {
	case config.LogNone:
		return
	case config.LogError:
		if level != "ERROR" {
			return
		}
	}

	now := l.now()
	name := "api_" + now.Format("2006-01-02") + ".log"
	if level == "ERROR" {
		name = "errors_" + now.Format("2006-01-02") + ".log"
	}
	line := fmt.Sprintf("[%s] %s\n", now.Format("2006-01-02 15:04:05"), msg)

	if l.dir == "" {
		// No destination configured: fall back to the process log.
		log.Print(strings.TrimSuffix(line, "\n"))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		log.Printf("log sink mkdir %s: %v", l.dir, err)
		return
	}
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("log sink open %s: %v", name, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		log.Printf("log sink write %s: %v", name, err)
	}
}

// CleanupOldLogs deletes *.log files in the log directory whose mtime is
// older than the retention window. A retention of zero keeps logs forever.
func (l *Logger) CleanupOldLogs() {
	if l == nil || l.keepDays <= 0 || l.dir == "" {
		return
	}
	cutoff := l.now().Add(-time.Duration(l.keepDays) * 24 * time.Hour)

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(l.dir, e.Name())); err != nil {
				log.Printf("log cleanup remove %s: %v", e.Name(), err)
			}
		}
	}
}

// StartCleanupWorker launches a background goroutine that runs the log
// cleanup once at startup and then once per day.
func StartCleanupWorker(l *Logger) {
	go func() {
		l.CleanupOldLogs()

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			l.CleanupOldLogs()
		}
	}()
}
