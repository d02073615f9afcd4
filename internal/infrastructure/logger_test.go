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

	"careerlens/internal/config"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, file, err := NewLogger(config.LoggingConfig{Level: "warn", Output: "console"}, &buf)
	require.NoError(t, err)
	assert.Nil(t, file)

	logger.Info("dropped")
	logger.Warn("kept", "view", "student")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "student", entries[0]["view"])
	assert.Equal(t, "WARN", entries[0]["level"])
}

func TestNewLoggerBoth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	var buf bytes.Buffer
	logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Output: "both", FilePath: path}, &buf)
	require.NoError(t, err)
	require.NotNil(t, file)

	logger.Info("upload accepted")
	require.NoError(t, file.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upload accepted", decodeLines(t, content)[0]["msg"])
	assert.Equal(t, "upload accepted", decodeLines(t, buf.Bytes())[0]["msg"])
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
}
