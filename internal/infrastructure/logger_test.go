package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oddscli/internal/config"
)

func lastEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file"}, logFile)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := lastEntry(t, content)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "source")
}

func TestInitializeLoggerOnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	dir := t.TempDir()
	first, err := InitializeLogger(config.LoggingConfig{Output: "file"}, filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Output: "file"}, filepath.Join(dir, "b.log"))
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = os.Stat(filepath.Join(dir, "b.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateLoggerBothOutputs(t *testing.T) {
	defer CloseLogFile()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")
	logger, err := createLogger(config.LoggingConfig{Level: "debug", Output: "both"}, logFile, &console)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.DebugContext(ctx, "dual output")
	require.NoError(t, CloseLogFile())

	fromFile, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", lastEntry(t, fromFile)["trace_id"])
	assert.Equal(t, "trace-123", lastEntry(t, console.Bytes())["trace_id"])
}

func TestCreateLoggerFileWithoutPath(t *testing.T) {
	_, err := createLogger(config.LoggingConfig{Output: "file"}, "", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{level: "debug", debugSeen: true, warnSeen: true},
		{level: "info", warnSeen: true},
		{level: "warning", warnSeen: true},
		{level: "error"},
		{level: "bogus", warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)
			logger.Debug("debug line")
			logger.Warn("warn line")

			assert.Equal(t, tt.debugSeen, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.warnSeen, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestTraceIDHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))

	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())

	var buf bytes.Buffer
	logger := WithSeries(WithComponent(NewLogger(&buf, "info"), "ingestion"), "election_2024")
	logger.InfoContext(ctx, "hello")
	entry := lastEntry(t, buf.Bytes())
	assert.Equal(t, "ingestion", entry["component"])
	assert.Equal(t, "election_2024", entry["series"])
	assert.Equal(t, id, entry["trace_id"])
}
