package infrastructure

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dashcsv/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestOTelInitialization_Defaults(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_StdoutTracing(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"
	cfg.TraceWriter = &out

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "report.publishers")
	assert.True(t, span.IsRecording())
	AddSpanEvent(ctx, "rows", map[string]interface{}{"count": 3, "file": "publishers.csv"})
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "report.publishers")
}

func TestOTelInitialization_UnknownExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, discardLogger())
	assert.Error(t, err)
}

func TestNewOTelConfig(t *testing.T) {
	cfg := NewOTelConfig(config.TelemetryConfig{Tracing: true, TraceExporter: "stdout"})
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, "stdout", cfg.TraceExporter)

	cfg = NewOTelConfig(config.TelemetryConfig{Tracing: true, TraceExporter: "none"})
	assert.False(t, cfg.EnableTracing)

	cfg = NewOTelConfig(config.TelemetryConfig{Tracing: false, TraceExporter: "stdout"})
	assert.False(t, cfg.EnableTracing)
}

func TestExportMetrics_WriteTextfile(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateExportMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("report", "publishers"))
	metrics.ReportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report", "publishers"),
		attribute.String("status", "success"),
	))
	metrics.RowsWritten.Add(ctx, 3, attrs)
	metrics.ReportDuration.Record(ctx, 0.25, attrs)

	path := filepath.Join(t.TempDir(), "dashcsv.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "dashcsv_reports_total")
	assert.Contains(t, text, "dashcsv_rows_written_total")
	assert.Contains(t, text, `report="publishers"`)
}

func TestWriteMetrics_NotInitialized(t *testing.T) {
	p := &OTelProviders{Logger: discardLogger()}
	assert.Error(t, p.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
}

func TestRecordError_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), assert.AnError)
		AddSpanEvent(context.Background(), "ignored", nil)
	})
}

func TestOTelInitialization_StdoutTracingDefaultsToConsole(t *testing.T) {
	var console bytes.Buffer
	consoleOutput = &console
	t.Cleanup(func() { consoleOutput = os.Stderr })

	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "report.registry")
	span.End()
	require.NoError(t, providers.Shutdown(context.Background()))

	assert.Contains(t, console.String(), "report.registry")
}
