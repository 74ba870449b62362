package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, LevelFromVerbosity(0))
	assert.Equal(t, slog.LevelWarn, LevelFromVerbosity(1))
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(2))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(5))
}

func TestInitWriterFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Level: slog.LevelWarn, Writer: &out}))
	t.Cleanup(Close)

	Info("hidden")
	Warn("no log files provided", "hive", "SYSTEM")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &line))
	assert.Equal(t, "no log files provided", line["msg"])
	assert.Equal(t, "SYSTEM", line["hive"])
}

func TestInitDisabledDiscards(t *testing.T) {
	require.NoError(t, Init(Options{Enabled: false}))
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, L.Enabled(t.Context(), lvl), lvl.String())
	}
}

func TestCloseRevertsToDiscard(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Level: slog.LevelDebug, Writer: &out}))
	assert.True(t, L.Enabled(t.Context(), slog.LevelDebug))

	Close()
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
	Error("dropped")
	assert.Empty(t, out.String())
}

func TestInitFileAndRetention(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, logPrefix+"2001-01-01"+logSuffix)
	keep := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	require.NoError(t, Init(Options{Enabled: true, LogDir: dir, Level: slog.LevelDebug}))
	Debug("opened")
	Close()

	assert.NoFileExists(t, stale)
	assert.FileExists(t, keep)
	today := filepath.Join(dir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"opened"`)
}
