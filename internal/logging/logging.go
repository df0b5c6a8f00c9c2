package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"logsweep/internal/config"
)

// New creates a logger that writes nowhere. stdout belongs to the
// interactive prompt, so diagnostics are opt-in.
func New() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags|log.Lmicroseconds)
}

// NewWithConfig creates a logger for the configured log file, mirrored to
// stderr when verbose is set. The returned closer releases the file.
func NewWithConfig(cfg *config.Config, verbose bool, stderr io.Writer) (*log.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if verbose && stderr != nil {
		writers = append(writers, stderr)
	}

	if cfg != nil && cfg.LogFile != "" {
		if dir := filepath.Dir(cfg.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Printf("failed to ensure log directory %s: %v", dir, err)
			}
		}

		rotateLogsIfNeeded(cfg.LogFile, cfg.Logging.RotationDays)

		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			if stderr != nil {
				fmt.Fprintf(stderr, "failed to open log file %s: %v\n", cfg.LogFile, err)
			}
		} else {
			writers = append(writers, f)
			closer = f
		}
	}

	if len(writers) == 0 {
		return New(), closer
	}
	return log.New(io.MultiWriter(writers...), "", log.LstdFlags|log.Lmicroseconds), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Leveled adapts a *log.Logger to key/value leveled calls:
// [INFO] msg key value key value ...
type Leveled struct {
	*log.Logger
}

// NewLeveled wraps logger, falling back to a discarding logger on nil.
func NewLeveled(logger *log.Logger) *Leveled {
	if logger == nil {
		logger = New()
	}
	return &Leveled{Logger: logger}
}

func (l *Leveled) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *Leveled) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *Leveled) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *Leveled) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// rotateLogsIfNeeded rotates the log file once it is older than rotationDays
func rotateLogsIfNeeded(logPath string, rotationDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			log.Printf("failed to rotate log file: %v", err)
			return
		}

		cleanupOldLogs(logPath, rotationDays)
	}
}

// cleanupOldLogs removes rotated copies of logPath once they have been kept
// for one more rotation period
func cleanupOldLogs(logPath string, rotationDays int) {
	logDir := filepath.Dir(logPath)
	baseName := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -2*rotationDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, baseName+".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			fullPath := filepath.Join(logDir, name)
			if err := os.Remove(fullPath); err != nil {
				log.Printf("failed to remove old log file %s: %v", fullPath, err)
			}
		}
	}
}
