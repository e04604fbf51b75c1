package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fxcpi/internal/infrastructure"
)

// Manager runs registered stages in dependency order
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. Nil providers disable tracing and metrics.
func NewManager(registry *Registry, config *Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Manager, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	tracer, err := NewOperationTracer(providers)
	if err != nil {
		return nil, err
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}, nil
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the stage named by the step parameter, or every stage in
// dependency order. The first failing stage stops the run and the rest are
// marked skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetRunID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	steps, err := m.selectSteps(req)
	if err != nil {
		m.logRunError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, req.ID, len(steps))
	m.logRunStart(ctx, req.ID, steps)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	if err != nil {
		state.Fail(err)
		m.logRunError(ctx, req.ID, err)
	} else {
		state.Complete()
	}
	m.tracer.EndRun(span, state.Duration(), err)
	m.logRunComplete(ctx, state, m.tracer.CollectRuntime(ctx))

	return m.createResponse(state), err
}

// selectSteps resolves the request into an ordered list of stages
func (m *Manager) selectSteps(req OperationRequest) ([]Step, error) {
	stepParam, _ := req.Parameters[ParameterStep].(string)
	if stepParam != "" && stepParam != FullPipeline {
		step, err := m.registry.Get(stepParam)
		if err != nil {
			return nil, err
		}
		return []Step{step}, nil
	}

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to get dependency order: %w", err)
	}
	return steps, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if ctx.Err() != nil {
			err := NewCancellationError(step.ID())
			m.skipRemaining(ctx, state, steps[i:], "run cancelled")
			return err
		}

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("previous stage %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs one stage under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	stageCtx, span := m.tracer.TraceStage(ctx, state.ID, step.ID())
	stageCtx, cancel := context.WithTimeout(stageCtx, m.config.GetStageTimeout(step.ID()))
	defer cancel()

	m.logStageStart(stageCtx, state.ID, step.ID())
	stepState.Start()

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		m.logStageError(stageCtx, state.ID, step.ID(), opErr)
		m.tracer.EndStage(stageCtx, span, state.ID, stepState, opErr)
		return opErr
	}

	start := time.Now()
	if err := step.Execute(stageCtx, state); err != nil {
		opErr := WrapError(err, step.ID(), "stage failed")
		if opErr.Type == ErrorTypeTimeout {
			opErr = NewTimeoutError(step.ID(), m.config.GetStageTimeout(step.ID()).String())
			opErr.Cause = err
		}
		stepState.Fail(opErr)
		m.logStageError(stageCtx, state.ID, step.ID(), opErr)
		m.tracer.EndStage(stageCtx, span, state.ID, stepState, opErr)
		return opErr
	}

	stepState.Complete()
	m.logStageComplete(stageCtx, state.ID, stepState, time.Since(start))
	m.tracer.EndStage(stageCtx, span, state.ID, stepState, nil)
	return nil
}

func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil {
			s.Skip(reason)
		}
		m.logStageSkipped(ctx, state.ID, step.ID(), reason)
	}
}

// createResponse creates a response from the operation state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Order:    append([]string(nil), state.Order...),
		Steps:    make(map[string]*StepState, len(state.Order)),
	}
	for _, id := range state.Order {
		resp.Steps[id] = state.GetStage(id)
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
