package operations_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/config"
	"fxcpi/internal/operations"
	"fxcpi/internal/operations/testutil"
)

func TestNewStepState(t *testing.T) {
	s := operations.NewStepState(operations.StageIDMerge, operations.StageNameMerge)

	assert.Equal(t, operations.StageIDMerge, s.ID)
	assert.Equal(t, operations.StageNameMerge, s.Name)
	testutil.AssertStepStatus(t, s, operations.StepStatusPending)
	assert.Empty(t, s.GetOutputs())
	assert.Zero(t, s.Duration())
}

func TestStepStateTransitions(t *testing.T) {
	tests := []struct {
		name   string
		apply  func(s *operations.StepState)
		status operations.StepStatus
	}{
		{"start", func(s *operations.StepState) { s.Start() }, operations.StepStatusActive},
		{"complete", func(s *operations.StepState) { s.Start(); s.Complete() }, operations.StepStatusCompleted},
		{"fail", func(s *operations.StepState) { s.Start(); s.Fail(errors.New("boom")) }, operations.StepStatusFailed},
		{"skip", func(s *operations.StepState) { s.Skip("previous stage merge failed") }, operations.StepStatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := operations.NewStepState("stage", "Stage")
			tt.apply(s)
			testutil.AssertStepStatus(t, s, tt.status)
		})
	}
}

func TestStepStateFailKeepsError(t *testing.T) {
	s := operations.NewStepState("stage", "Stage")
	s.Start()
	time.Sleep(time.Millisecond)
	cause := errors.New("no month in common")
	s.Fail(cause)

	assert.Equal(t, cause, s.Error)
	assert.Positive(t, s.Duration())
}

func TestStepStateOutputs(t *testing.T) {
	s := operations.NewStepState(operations.StageIDRollingCategories, operations.StageNameRollingCategories)
	s.RecordOutput(config.FileRollingBeta, 48)
	s.RecordOutput(config.FileRollingRho, 47)
	s.RecordOutput(config.FileRollingRho, 48)

	outputs := s.GetOutputs()
	assert.Equal(t, map[string]int{config.FileRollingBeta: 48, config.FileRollingRho: 48}, outputs)

	// the copy is detached
	outputs[config.FileRollingBeta] = 0
	assert.Equal(t, 48, s.GetOutputs()[config.FileRollingBeta])
}

func TestStepStateConcurrentUnstable(t *testing.T) {
	s := operations.NewStepState("stage", "Stage")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddUnstable(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.GetUnstable())
}

func TestBaseStage(t *testing.T) {
	base := operations.NewBaseStage("merge", "Merge", nil)

	assert.Equal(t, "merge", base.ID())
	assert.Equal(t, "Merge", base.Name())
	assert.NotNil(t, base.GetDependencies())
	assert.Empty(t, base.GetDependencies())
	require.NoError(t, base.Validate(operations.NewOperationState("run")))

	withDeps := operations.NewBaseStage("lags", "Lags", []string{"merge"})
	assert.Equal(t, []string{"merge"}, withDeps.GetDependencies())

	var missing *operations.BaseStage
	assert.Equal(t, "", missing.ID())
	assert.Error(t, missing.Validate(nil))
}
