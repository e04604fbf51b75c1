package operations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fxcpi/internal/operations"
)

func TestNewConfig(t *testing.T) {
	config := operations.NewConfig()

	assert.NotNil(t, config.StageTimeouts)
	assert.Equal(t, operations.DefaultStageTimeout, config.DefaultTimeout)
	assert.Equal(t, operations.DefaultStageTimeout, config.GetStageTimeout(operations.StageIDMerge))
}

func TestConfigStageTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		config *operations.Config
		stage  string
		want   time.Duration
	}{
		{
			name:   "default",
			config: operations.NewConfig(),
			stage:  operations.StageIDFXMonthly,
			want:   operations.DefaultStageTimeout,
		},
		{
			name: "custom default",
			config: &operations.Config{
				DefaultTimeout: time.Minute,
			},
			stage: operations.StageIDFXMonthly,
			want:  time.Minute,
		},
		{
			name: "stage override",
			config: &operations.Config{
				DefaultTimeout: time.Minute,
				StageTimeouts: map[string]time.Duration{
					operations.StageIDRollingCategories: 10 * time.Minute,
				},
			},
			stage: operations.StageIDRollingCategories,
			want:  10 * time.Minute,
		},
		{
			name:   "zero config falls back",
			config: &operations.Config{},
			stage:  operations.StageIDValidate,
			want:   operations.DefaultStageTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.GetStageTimeout(tt.stage))
		})
	}
}

func TestConfigSetStageTimeout(t *testing.T) {
	config := &operations.Config{}
	config.SetStageTimeout(operations.StageIDBaselines, 2*time.Second)

	assert.Equal(t, 2*time.Second, config.GetStageTimeout(operations.StageIDBaselines))
	assert.Equal(t, operations.DefaultStageTimeout, config.GetStageTimeout(operations.StageIDPersistence))
}
