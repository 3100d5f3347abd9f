package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	l, err := NewLogger(&LoggingConfig{Level: "warn", Format: "text", Output: path})
	require.NoError(t, err)

	l.Info("hidden %d", 1)
	l.Warn("shown %s", "warning")
	l.Error("shown error")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "shown error")
}

func TestJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.json")
	l, err := NewLogger(&LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.With("session", "abc").Debug("turn %d", 3)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "turn 3", entry["msg"])
	assert.Equal(t, "abc", entry["session"])
}

func TestNewLoggerDefaults(t *testing.T) {
	l, err := NewLogger(nil)
	require.NoError(t, err)
	assert.NotNil(t, l.Zap())

	_, err = NewLogger(&LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		_ = l.Close()
	})
}
