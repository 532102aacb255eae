package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", LevelTrace.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "NONE", LevelNone.String())
}

func TestGetLevelFromEnv(t *testing.T) {
	t.Setenv("VITALSYNC_LOG_LEVEL", "warn")
	assert.Equal(t, LevelWarn, GetLevelFromEnv())
	t.Setenv("VITALSYNC_LOG_LEVEL", "TRACE")
	assert.Equal(t, LevelTrace, GetLevelFromEnv())
	t.Setenv("VITALSYNC_LOG_LEVEL", "bogus")
	assert.Equal(t, LevelInfo, GetLevelFromEnv())
}

func TestConsoleLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWithWriter(&buf, LevelWarn)
	log.Info("should not appear")
	assert.Empty(t, buf.String())
	log.Warn("count is %d", 3)
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "count is 3")
}

func TestConsoleMetadataAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWithWriter(&buf, LevelDebug).
		WithPrefix("[cache]").
		With(map[string]any{"key": "abc"})
	log.Debug("refresh failed")
	out := buf.String()
	assert.Contains(t, out, "[cache] refresh failed")
	assert.Contains(t, out, "key=abc")
}

func TestJSONEntryShape(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONWithWriter(&buf, LevelInfo).With(map[string]any{"attempt": 2})
	log.Warn("refresh failed for %s", "k1")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARNING", entry.Severity)
	assert.Equal(t, "refresh failed for k1", entry.Message)
	assert.EqualValues(t, 2, entry.Metadata["attempt"])
	assert.False(t, entry.Timestamp.IsZero())
}

func TestJSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONWithWriter(&buf, LevelError)
	log.Info("nope")
	log.Debug("nope")
	assert.Empty(t, buf.String())
	log.Error("yes")
	assert.Contains(t, buf.String(), `"yes"`)
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewConsoleWithWriter(&buf, LevelInfo)
	_ = parent.With(map[string]any{"child": true})
	parent.Info("plain")
	assert.NotContains(t, buf.String(), "child")
}

func TestTestLoggerCaptures(t *testing.T) {
	log := NewTestLogger()
	log.Warn("refresh failed for %q", "k1")
	log.Info("ok")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARNING", entries[0].Severity)
	assert.Equal(t, `refresh failed for "k1"`, entries[0].Message)
	assert.Len(t, log.EntriesBySeverity("WARNING"), 1)
	assert.Empty(t, log.EntriesBySeverity("ERROR"))
}
