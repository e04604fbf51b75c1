package testutil

import (
	"context"
	"fmt"
	"time"

	"fxcpi/internal/operations"
)

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id, name string, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
	}
}

// CreateFailingStage creates a step whose Execute returns err
func CreateFailingStage(id, name string, err error, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}

// CreateSlowStage creates a step that runs for duration unless its context ends first
func CreateSlowStage(id, name string, duration time.Duration, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			select {
			case <-time.After(duration):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// CreateValidationFailingStage creates a step whose Validate fails
func CreateValidationFailingStage(id, name string, validationErr error, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ValidateFunc: func(state *operations.OperationState) error {
			return validationErr
		},
	}
}

// CreateOutputStage creates a step that records an output file and unstable estimates
func CreateOutputStage(id, name, file string, rows, unstable int, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			stage := state.GetStage(id)
			stage.RecordOutput(file, rows)
			stage.AddUnstable(unstable)
			return nil
		},
	}
}

// CreateContextAwareStage creates a step that requires readKey in the
// context and then writes writeKey
func CreateContextAwareStage(id, name string, readKey, writeKey string, writeValue interface{}, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			if readKey != "" {
				if _, ok := state.GetContext(readKey); !ok {
					return fmt.Errorf("context key %s not set", readKey)
				}
			}
			if writeKey != "" {
				state.SetContext(writeKey, writeValue)
			}
			return nil
		},
	}
}

// CreateChainStages creates n steps where each depends on the previous one
func CreateChainStages(prefix string, n int) []*MockStage {
	stages := make([]*MockStage, n)
	for i := range stages {
		var deps []string
		if i > 0 {
			deps = []string{stages[i-1].IDValue}
		}
		stages[i] = CreateSuccessfulStage(fmt.Sprintf("%s%d", prefix, i+1), fmt.Sprintf("Stage %d", i+1), deps...)
	}
	return stages
}

// CreateTestRegistry registers the given steps in order
func CreateTestRegistry(steps ...operations.Step) (*operations.Registry, error) {
	registry := operations.NewRegistry()
	for _, s := range steps {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// CreateStepRequest creates a request running a single step
func CreateStepRequest(id, step string) operations.OperationRequest {
	return operations.OperationRequest{
		ID:         id,
		Parameters: map[string]interface{}{operations.ParameterStep: step},
	}
}
