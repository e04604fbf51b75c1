package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/operations"
)

// AssertStepStatus checks the status of a step state
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	require.NotNil(t, step, "step state is nil")
	assert.Equal(t, expected, step.GetStatus(), "step %s", step.ID)
}

// AssertStageCompleted checks that a stage of the run completed
func AssertStageCompleted(t *testing.T, resp *operations.OperationResponse, stageID string) {
	t.Helper()
	AssertStepStatus(t, resp.Steps[stageID], operations.StepStatusCompleted)
}

// AssertStageFailed checks that a stage of the run failed
func AssertStageFailed(t *testing.T, resp *operations.OperationResponse, stageID string) {
	t.Helper()
	AssertStepStatus(t, resp.Steps[stageID], operations.StepStatusFailed)
}

// AssertStageSkipped checks that a stage of the run was skipped
func AssertStageSkipped(t *testing.T, resp *operations.OperationResponse, stageID string) {
	t.Helper()
	AssertStepStatus(t, resp.Steps[stageID], operations.StepStatusSkipped)
}

// AssertErrorType checks the classification of an operation error
func AssertErrorType(t *testing.T, err error, expectedType operations.ErrorType) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, expectedType, operations.GetErrorType(err), "error: %v", err)
}

// AssertExecutionOrder checks that the steps ran in the given order
func AssertExecutionOrder(t *testing.T, steps []*MockStage, expectedOrder []string) {
	t.Helper()
	byID := make(map[string]*MockStage, len(steps))
	for _, s := range steps {
		byID[s.IDValue] = s
	}
	for i := 1; i < len(expectedOrder); i++ {
		prev, cur := byID[expectedOrder[i-1]], byID[expectedOrder[i]]
		require.NotNil(t, prev, "unknown step %s", expectedOrder[i-1])
		require.NotNil(t, cur, "unknown step %s", expectedOrder[i])
		require.NotEmpty(t, prev.ExecuteTimes, "%s never ran", prev.IDValue)
		require.NotEmpty(t, cur.ExecuteTimes, "%s never ran", cur.IDValue)
		assert.False(t, cur.ExecuteTimes[0].Before(prev.ExecuteTimes[0]),
			"%s ran before %s", cur.IDValue, prev.IDValue)
	}
}

// AssertLogged checks that the handler captured a message
func AssertLogged(t *testing.T, handler *MockSlogHandler, message string) {
	t.Helper()
	assert.True(t, handler.HasMessage(message), "no %q record", message)
}
