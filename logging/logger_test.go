package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _ Logger = NoOpLogger{}
var _ Logger = (*SlogAdapter)(nil)
var _ Logger = (*StructuredLogger)(nil)
var _ Logger = (*ZapAdapter)(nil)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestStructuredLogger_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.WithComponent("creator").WithRequest("req-1").WithContext("depth", 2).Info("spawned", "child", "agent_a")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "spawned", lines[0]["msg"])
	assert.Equal(t, "creator", lines[0]["component"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, float64(2), lines[0]["depth"])
	assert.Equal(t, "agent_a", lines[0]["child"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.LogSynthesis("Creator", "agent", time.Millisecond, false, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.Equal(t, "Synthesis failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestStructuredLogger_CloneIsolation(t *testing.T) {
	base := NewSlogLogger(LogLevelInfo, "json", false)
	child := base.WithContext("k", "v")

	assert.Empty(t, base.context)
	assert.Equal(t, "v", child.context["k"])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"debug": LogLevelDebug, "INFO": LogLevelInfo, "": LogLevelInfo, "warning": LogLevelWarn, "error": LogLevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestZapAdapter_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapAdapter(zap.New(core))

	With(l, "engine").Info("delivered", "to", "agent_a/default")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "delivered", entries[0].Message)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, "agent_a/default", entries[0].ContextMap()["to"])
}
