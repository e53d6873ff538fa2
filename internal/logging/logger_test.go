package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(DEBUG, &buf)

	logger.Info("fetched states", "count", 42)

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "fetched states", entry.Message)
	assert.Equal(t, float64(42), entry.Fields["count"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestStructuredLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(WARN, &buf)

	logger.Debug("dropped")
	logger.Info("dropped too")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestStructuredLoggerTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, &buf)

	ctx := WithTraceID(context.Background(), "trace-xyz")
	logger.InfoContext(ctx, "resolving resource")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-xyz", entry.TraceID)
}

func TestStructuredLoggerContextTraceOverridesOwn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, &buf).WithTraceID("own-trace")

	ctx := WithTraceID(context.Background(), "ctx-trace")
	logger.InfoContext(ctx, "msg")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ctx-trace", entry.TraceID)
}

func TestStructuredLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, &buf).WithComponent("resources")

	logger.Info("msg")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resources", entry.Component)
}

func TestWithTraceIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")
	assert.NotEmpty(t, GetTraceID(ctx))
}

func TestGetTraceIDMissing(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetTraceID(nil)) //nolint:staticcheck // nil context tolerated on purpose
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warn", WARN},
		{"WARNING", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"bogus", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.in), tt.in)
	}
}

func TestNoOpLoggerDiscards(t *testing.T) {
	logger := NewNoOpLogger()
	logger.Info("ignored")
	logger.ErrorContext(context.Background(), "ignored")
	assert.Same(t, logger, logger.WithTraceID("t").WithComponent("c"))
}
