package operations

import (
	"context"
	"log/slog"
	"time"

	"fxcpi/internal/infrastructure"
)

// logRunStart logs the start of a pipeline run
func (m *Manager) logRunStart(ctx context.Context, runID string, steps []Step) {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	m.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", runID),
		slog.Any("stages", ids))
}

// logRunComplete logs the completion of a pipeline run
func (m *Manager) logRunComplete(ctx context.Context, state *OperationState, rt *infrastructure.RuntimeStats) {
	attrs := []any{
		slog.String("run_id", state.ID),
		slog.String("status", string(state.Status)),
		slog.Int("unstable", state.TotalUnstable()),
		slog.Duration("duration", state.Duration()),
	}
	m.logger.InfoContext(ctx, "run_complete", append(attrs, rt.LogAttrs()...)...)
}

// logRunError logs a run that stopped early
func (m *Manager) logRunError(ctx context.Context, runID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "run_error",
		slog.String("run_id", runID),
		slog.String("error", errorMsg))
}

// logStageStart logs the start of a stage
func (m *Manager) logStageStart(ctx context.Context, runID, stageID string) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("run_id", runID),
		slog.String("stage", stageID))
}

// logStageComplete logs the completion of a stage
func (m *Manager) logStageComplete(ctx context.Context, runID string, stage *StepState, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("run_id", runID),
		slog.String("stage", stage.ID),
		slog.Int("outputs", len(stage.GetOutputs())),
		slog.Int("unstable", stage.GetUnstable()),
		slog.Duration("duration", duration))
}

// logStageError logs a stage failure
func (m *Manager) logStageError(ctx context.Context, runID, stageID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("run_id", runID),
		slog.String("stage", stageID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errorMsg))
}

// logStageSkipped logs a stage not run because an earlier one failed
func (m *Manager) logStageSkipped(ctx context.Context, runID, stageID, reason string) {
	m.logger.WarnContext(ctx, "stage_skipped",
		slog.String("run_id", runID),
		slog.String("stage", stageID),
		slog.String("reason", reason))
}
