// Package debug writes a structured trace to a file when enabled.
// The TUI owns the terminal, so diagnostics must never touch stdout.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	file    *os.File
	logger  *log.Logger
	enabled bool
	counts  = map[string]int{}
)

// Enable starts tracing to path, truncating the previous run.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("debug: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("debug: open log: %w", err)
	}
	file = f
	logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           log.DebugLevel,
	})
	enabled = true
	return nil
}

// Log writes one line under a category prefix. A no-op until Enable.
func Log(category, msg string, keyvals ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	logger.WithPrefix(category).Debug(msg, keyvals...)
}

// LogEvery writes only every nth call per category and message, which
// keeps tick loops from flooding the trace.
func LogEvery(n int, category, msg string, keyvals ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || n <= 0 {
		return
	}
	key := category + "/" + msg
	counts[key]++
	if counts[key]%n != 0 {
		return
	}
	logger.WithPrefix(category).Debug(msg, keyvals...)
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Close stops tracing and releases the file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file = nil
	logger = nil
	enabled = false
}
