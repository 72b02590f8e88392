package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/config"
)

func TestLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "info", Format: "json"}, &buf)

	logger.InfoContext(WithRequestID(context.Background(), "abc"), "hello", "n", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.NotContains(t, entry, "trace_id")
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.With("component", "test").Warn("kept")
	assert.Contains(t, buf.String(), "component=test")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("Debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("unknown").String())
}

func TestInitTracing(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(config.TracingConfig{Enabled: true, ServiceName: "test"}, &buf)
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "operation")
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"operation"`)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(config.TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Empty(t, TraceID(context.Background()))
}
