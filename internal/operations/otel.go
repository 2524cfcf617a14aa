package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"dashcsv/internal/infrastructure"
)

const (
	TracerName = "dashcsv.operations"
)

// StepTracer provides OpenTelemetry instrumentation for step execution.
// A nil metrics set records spans only.
type StepTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ExportMetrics
}

// NewStepTracer creates a step tracer. A nil tracer disables spans.
func NewStepTracer(tracer trace.Tracer, metrics *infrastructure.ExportMetrics) *StepTracer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	return &StepTracer{tracer: tracer, metrics: metrics}
}

// TraceRun creates the parent span of one export run
func (st *StepTracer) TraceRun(ctx context.Context, runID string, steps int) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, "export.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.steps", steps),
		),
	)
}

// TraceStep creates a span for one step
func (st *StepTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, "report."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion records the outcome of a step on its span and in
// the export metrics
func (st *StepTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, rows int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
		attribute.Int("step.rows", rows),
	)

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(attribute.String("step.id", stepID)))
	} else {
		infrastructure.AddSpanEvent(ctx, "step.completed", map[string]interface{}{
			"step_id": stepID,
			"rows":    rows,
		})
		span.SetStatus(codes.Ok, "step completed successfully")
	}

	if st.metrics == nil {
		return
	}
	report := metric.WithAttributes(attribute.String("report", stepID))
	st.metrics.ReportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report", stepID),
		attribute.String("status", status),
	))
	st.metrics.ReportDuration.Record(ctx, duration.Seconds(), report)
	if rows > 0 {
		st.metrics.RowsWritten.Add(ctx, int64(rows), report)
	}
}

// RecordRunCompletion records the total run duration
func (st *StepTracer) RecordRunCompletion(ctx context.Context, span trace.Span, duration time.Duration, failed int) {
	span.SetAttributes(
		attribute.Float64("run.duration_seconds", duration.Seconds()),
		attribute.Int("run.failed", failed),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, "one or more steps failed")
	} else {
		span.SetStatus(codes.Ok, "run completed successfully")
	}

	if st.metrics != nil {
		st.metrics.RunDuration.Record(ctx, duration.Seconds())
	}
}
