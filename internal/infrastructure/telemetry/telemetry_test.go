package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mrops-br/products-catalog-api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.OTLPConfig {
	return &config.OTLPConfig{
		ServiceName:    "products-api-test",
		ServiceVersion: "test",
		Environment:    "test",
		LogLevel:       slog.LevelError,
	}
}

func TestLoggerAddsTraceAndRoute(t *testing.T) {
	telem, err := NewNoOpTelemetry(testConfig())
	require.NoError(t, err)
	defer telem.Shutdown(context.Background())

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, testConfig())

	ctx, span := telem.TracerProvider.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/products/{id}")
	logger.InfoContext(ctx, "hello")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "products-api-test", record["service.name"])
	assert.Equal(t, "/products/{id}", record["http.route"])
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
}

func TestLoggerWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, testConfig()).Debug("dropped")
	NewLogger(&buf, slog.LevelInfo, testConfig()).WithGroup("g").Info("kept", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "trace_id")
}

func TestNoOpTelemetryFeedsPrometheus(t *testing.T) {
	telem, err := NewNoOpTelemetry(testConfig())
	require.NoError(t, err)

	counter, err := telem.MeterProvider.Meter("test").Int64Counter("catalog.test.events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	families, err := telem.Registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "catalog_test_events_total")

	assert.NoError(t, telem.Shutdown(context.Background()))
}
