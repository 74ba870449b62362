// Package logger is the process-wide structured logger. It discards
// everything until Init is called because the terminal belongs to the UI;
// when enabled it writes JSON lines to a dated file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance.
var L = discard()

var sink io.Closer

const (
	logPrefix     = "regview-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 30
)

// Options configures Init.
type Options struct {
	Enabled bool       // false discards all output
	LogDir  string     // default ~/.regview/logs
	Level   slog.Level // minimum level
	// Writer, when set, receives log lines instead of a dated file.
	Writer io.Writer
}

// LevelFromVerbosity maps a repeated -v count to a level: 0 or 1 warn,
// 2 info, 3 and above debug.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v >= 3:
		return slog.LevelDebug
	case v == 2:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Init configures logging. Call it from main before any log calls.
func Init(opts Options) error {
	Close()
	if !opts.Enabled {
		L = discard()
		return nil
	}
	w := opts.Writer
	if w == nil {
		f, err := openLogFile(opts.LogDir)
		if err != nil {
			return err
		}
		w, sink = f, f
	}
	L = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	return nil
}

// Close flushes and closes the log file, if any, and reverts to discarding.
func Close() {
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
	L = discard()
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".regview", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cleanOldLogs(dir, time.Now())

	name := filepath.Join(dir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
	return os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// cleanOldLogs removes dated log files older than retentionDays. Best-effort.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		day, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
