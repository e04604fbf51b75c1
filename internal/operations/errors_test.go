package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/operations"
)

func TestOperationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *operations.OperationError
		want string
	}{
		{
			name: "with step and cause",
			err: &operations.OperationError{
				Type:    operations.ErrorTypeExecution,
				Step:    "merge",
				Message: "stage failed",
				Cause:   errors.New("no month in common"),
			},
			want: "[execution] merge: stage failed: no month in common",
		},
		{
			name: "without step",
			err:  operations.NewFatalError("registry broken", nil),
			want: "[fatal] registry broken",
		},
		{
			name: "not found",
			err:  operations.NewNotFoundError("forecast"),
			want: "[not_found] forecast: step not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *operations.OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := operations.NewValidationError("merge", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, operations.ErrorTypeValidation, err.Type)
}

func TestErrorConstructors(t *testing.T) {
	dep := operations.NewDependencyError("merge", "fx_monthly", "step merge depends on non-existent step fx_monthly")
	assert.Equal(t, operations.ErrorTypeDependency, dep.Type)
	assert.Equal(t, "fx_monthly", dep.Context["depends_on"])

	timeout := operations.NewTimeoutError("rolling_categories", "5m0s")
	assert.Equal(t, operations.ErrorTypeTimeout, timeout.Type)
	assert.Contains(t, timeout.Error(), "5m0s")

	cancelled := operations.NewCancellationError("baselines")
	assert.Equal(t, operations.ErrorTypeCancellation, cancelled.Type)
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want operations.ErrorType
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), operations.ErrorTypeExecution},
		{"operation error", operations.NewCancellationError("merge"), operations.ErrorTypeCancellation},
		{"wrapped", fmt.Errorf("run: %w", operations.NewNotFoundError("x")), operations.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operations.GetErrorType(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, operations.WrapError(nil, "merge", "stage failed"))

	tests := []struct {
		name string
		err  error
		want operations.ErrorType
	}{
		{"execution", errors.New("boom"), operations.ErrorTypeExecution},
		{"deadline", fmt.Errorf("reading workbook: %w", context.DeadlineExceeded), operations.ErrorTypeTimeout},
		{"cancelled", context.Canceled, operations.ErrorTypeCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := operations.WrapError(tt.err, "fx_monthly", "stage failed")
			require.NotNil(t, wrapped)
			assert.Equal(t, tt.want, wrapped.Type)
			assert.Equal(t, "fx_monthly", wrapped.Step)
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestWrapErrorKeepsOperationError(t *testing.T) {
	original := &operations.OperationError{Type: operations.ErrorTypeValidation, Message: "inputs not available"}

	wrapped := operations.WrapError(original, "merge", "stage failed")
	assert.Same(t, original, wrapped)
	assert.Equal(t, "merge", wrapped.Step)

	other := operations.WrapError(operations.NewValidationError("lags", nil), "merge", "stage failed")
	assert.Equal(t, "lags", other.Step)
}
