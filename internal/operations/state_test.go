package operations_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/operations"
	"fxcpi/pkg/contracts/domain"
)

func TestNewOperationState(t *testing.T) {
	state := operations.NewOperationState("run-1")

	assert.Equal(t, "run-1", state.ID)
	assert.Equal(t, operations.OperationStatusPending, state.Status)
	assert.Empty(t, state.Steps)
	assert.NotNil(t, state.Context)
	assert.NotNil(t, state.Config)
	assert.Nil(t, state.EndTime)
}

func TestOperationStateLifecycle(t *testing.T) {
	state := operations.NewOperationState("run-1")

	state.Start()
	assert.Equal(t, operations.OperationStatusRunning, state.Status)

	state.Complete()
	assert.Equal(t, operations.OperationStatusCompleted, state.Status)
	require.NotNil(t, state.EndTime)
	assert.GreaterOrEqual(t, state.Duration(), time.Duration(0))

	failed := operations.NewOperationState("run-2")
	failed.Start()
	cause := errors.New("boom")
	failed.Fail(cause)
	assert.Equal(t, operations.OperationStatusFailed, failed.Status)
	assert.Equal(t, cause, failed.Error)
}

func TestOperationStateStagesKeepOrder(t *testing.T) {
	state := operations.NewOperationState("run-1")
	for _, id := range []string{"merge", "lags", "rolling"} {
		state.SetStage(id, operations.NewStepState(id, id))
	}
	// replacing a stage keeps its position
	state.SetStage("merge", operations.NewStepState("merge", "Merge"))

	assert.Equal(t, []string{"merge", "lags", "rolling"}, state.Order)
	assert.Equal(t, "Merge", state.GetStage("merge").Name)
	assert.Nil(t, state.GetStage("missing"))

	state.GetStage("merge").Complete()
	state.GetStage("lags").Fail(errors.New("boom"))
	state.GetStage("rolling").Skip("previous stage lags failed")

	assert.Len(t, state.GetCompletedStages(), 1)
	assert.Len(t, state.GetSkippedStages(), 1)
	failed := state.GetFailedStages()
	require.Len(t, failed, 1)
	assert.Equal(t, "lags", failed[0].ID)
	assert.True(t, state.HasFailures())
}

func TestOperationStateTables(t *testing.T) {
	state := operations.NewOperationState("run-1")

	tbl := domain.NewTable([]time.Time{time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, tbl.AddColumn(domain.ColFXMoM, []float64{0.4}))
	state.SetContext(operations.ContextKeyMerged, tbl)
	state.SetContext("not_a_table", 42)

	got, err := state.GetTable(operations.ContextKeyMerged)
	require.NoError(t, err)
	assert.Same(t, tbl, got)

	_, err = state.GetTable(operations.ContextKeyCategories)
	assert.ErrorContains(t, err, "not in context")

	_, err = state.GetTable("not_a_table")
	assert.ErrorContains(t, err, "not a table")
}

func TestOperationStateConfig(t *testing.T) {
	state := operations.NewOperationState("run-1")
	state.SetConfig(operations.ParameterStep, operations.StageIDMerge)

	v, ok := state.GetConfig(operations.ParameterStep)
	assert.True(t, ok)
	assert.Equal(t, operations.StageIDMerge, v)

	_, ok = state.GetConfig("missing")
	assert.False(t, ok)
}

func TestOperationStateTotalUnstable(t *testing.T) {
	state := operations.NewOperationState("run-1")
	a := operations.NewStepState("a", "A")
	b := operations.NewStepState("b", "B")
	state.SetStage("a", a)
	state.SetStage("b", b)

	a.AddUnstable(2)
	b.AddUnstable(3)
	b.AddUnstable(1)

	assert.Equal(t, 6, state.TotalUnstable())
}

func TestOperationStateConcurrentAccess(t *testing.T) {
	state := operations.NewOperationState("run-1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state.SetContext("key", i)
			_, _ = state.GetContext("key")
			state.SetConfig("key", i)
			_, _ = state.GetConfig("key")
		}(i)
	}
	wg.Wait()

	_, ok := state.GetContext("key")
	assert.True(t, ok)
}
