package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"fxcpi/internal/infrastructure"
)

const (
	TracerName = "fxcpi.pipeline"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer bound to the given providers. Nil
// providers give a no-op tracer and no metrics.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return &OperationTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}

	return &OperationTracer{
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// Metrics returns the pipeline instruments, nil when metrics are disabled
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceRun creates a span for the entire pipeline run
func (pt *OperationTracer) TraceRun(ctx context.Context, runID string, stageCount int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.stage_count", stageCount),
		),
	)
}

// TraceStage creates a span for one stage
func (pt *OperationTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "stage."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stageID),
		),
	)
}

// EndStage records the stage outcome on its span and in the metrics, then ends the span
func (pt *OperationTracer) EndStage(ctx context.Context, span trace.Span, runID string, stage *StepState, err error) {
	duration := stage.Duration()
	success := err == nil

	infrastructure.RecordStageMetrics(ctx, pt.metrics, runID, stage.ID, duration, success)

	if success {
		outputs := stage.GetOutputs()
		for file, rows := range outputs {
			infrastructure.RecordOutputRows(pt.metrics, file, rows)
		}
		infrastructure.RecordUnstable(ctx, pt.metrics, stage.ID, stage.GetUnstable())

		span.SetAttributes(
			attribute.Int("stage.outputs", len(outputs)),
			attribute.Int("stage.unstable", stage.GetUnstable()),
		)
		span.SetStatus(codes.Ok, "stage completed")
	} else {
		infrastructure.RecordError(ctx, err)
	}

	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))
	span.End()
}

// EndRun closes the run span and sets the last-run gauge
func (pt *OperationTracer) EndRun(span trace.Span, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("run.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()

	if pt.metrics == nil {
		return
	}
	if err != nil {
		pt.metrics.LastRunSuccess.Set(0)
		return
	}
	pt.metrics.LastRunSuccess.Set(1)
}

// CollectRuntime snapshots the Go runtime, recording it when metrics are enabled
func (pt *OperationTracer) CollectRuntime(ctx context.Context) *infrastructure.RuntimeStats {
	if pt.metrics == nil {
		return infrastructure.ReadRuntimeStats()
	}
	return pt.metrics.Runtime.Collect(ctx)
}
