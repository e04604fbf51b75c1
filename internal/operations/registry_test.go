package operations_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/operations"
	"fxcpi/internal/operations/testutil"
)

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Equal(t, 0, registry.Count())
	steps := registry.List()
	assert.NotNil(t, steps, "List() should return empty slice, not nil")
	assert.Empty(t, steps)
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("stage1", "Stage 1")))
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("stage2", "Stage 2")))
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("stage3", "Stage 3")))

	assert.Equal(t, 3, registry.Count())
	assert.Equal(t, []string{"stage1", "stage2", "stage3"}, registry.ListIDs())
	assert.True(t, registry.Has("stage2"))
	assert.False(t, registry.Has("stage4"))

	step, err := registry.Get("stage2")
	require.NoError(t, err)
	assert.Equal(t, "Stage 2", step.Name())
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(testutil.CreateSuccessfulStage("", "No ID")))

	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("dup", "First")))
	err := registry.Register(testutil.CreateSuccessfulStage("dup", "Second"))
	assert.ErrorContains(t, err, "already registered")
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := operations.NewRegistry()

	_, err := registry.Get("missing")
	testutil.AssertErrorType(t, err, operations.ErrorTypeNotFound)
}

func TestRegistryDependencyOrder(t *testing.T) {
	tests := []struct {
		name  string
		steps []*testutil.MockStage
		want  []string
	}{
		{
			name: "linear chain registered backwards",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("c", "C", "b"),
				testutil.CreateSuccessfulStage("b", "B", "a"),
				testutil.CreateSuccessfulStage("a", "A"),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "earliest registered ready step runs first",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("extract", "Extract"),
				testutil.CreateSuccessfulStage("fx", "FX"),
				testutil.CreateSuccessfulStage("merge", "Merge", "extract", "fx"),
				testutil.CreateSuccessfulStage("categories", "Categories"),
				testutil.CreateSuccessfulStage("rolling", "Rolling", "merge", "categories"),
				testutil.CreateSuccessfulStage("lags", "Lags", "merge"),
			},
			want: []string{"extract", "fx", "merge", "categories", "rolling", "lags"},
		},
		{
			name: "dependent registered before a later root",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("baseline", "Baseline"),
				testutil.CreateSuccessfulStage("inflation", "Inflation", "baseline"),
				testutil.CreateSuccessfulStage("fx", "FX"),
				testutil.CreateSuccessfulStage("merge", "Merge", "inflation", "fx"),
			},
			want: []string{"baseline", "inflation", "fx", "merge"},
		},
		{
			name: "diamond",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("root", "Root"),
				testutil.CreateSuccessfulStage("left", "Left", "root"),
				testutil.CreateSuccessfulStage("right", "Right", "root"),
				testutil.CreateSuccessfulStage("join", "Join", "left", "right"),
			},
			want: []string{"root", "left", "right", "join"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := operations.NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, registry.Register(s))
			}

			ordered, err := registry.GetDependencyOrder()
			require.NoError(t, err)

			ids := make([]string, len(ordered))
			for i, s := range ordered {
				ids[i] = s.ID()
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRegistryDependencyErrors(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		registry, err := testutil.CreateTestRegistry(
			testutil.CreateSuccessfulStage("merge", "Merge", "fx"),
		)
		require.NoError(t, err)

		err = registry.ValidateDependencies()
		testutil.AssertErrorType(t, err, operations.ErrorTypeDependency)
		assert.ErrorContains(t, err, "non-existent step fx")
	})

	t.Run("cycle", func(t *testing.T) {
		registry, err := testutil.CreateTestRegistry(
			testutil.CreateSuccessfulStage("a", "A", "c"),
			testutil.CreateSuccessfulStage("b", "B", "a"),
			testutil.CreateSuccessfulStage("c", "C", "b"),
		)
		require.NoError(t, err)

		_, err = registry.GetDependencyOrder()
		testutil.AssertErrorType(t, err, operations.ErrorTypeDependency)
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestRegistryGetDependents(t *testing.T) {
	registry, err := testutil.CreateTestRegistry(
		testutil.CreateSuccessfulStage("merge", "Merge"),
		testutil.CreateSuccessfulStage("lags", "Lags", "merge"),
		testutil.CreateSuccessfulStage("categories", "Categories"),
		testutil.CreateSuccessfulStage("rolling", "Rolling", "merge", "categories"),
	)
	require.NoError(t, err)

	dependents := registry.GetDependents("merge")
	require.Len(t, dependents, 2)
	assert.Equal(t, "lags", dependents[0].ID())
	assert.Equal(t, "rolling", dependents[1].ID())
	assert.Empty(t, registry.GetDependents("rolling"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := operations.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("stage%d", i)
			assert.NoError(t, registry.Register(testutil.CreateSuccessfulStage(id, id)))
			_ = registry.List()
			_ = registry.Has(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, registry.Count())
}

func TestRegisterStages(t *testing.T) {
	fixture := testutil.NewPipelineFixture(t)
	env := operations.NewEnv(fixture.Config, fixture.Paths, nil)

	registry := operations.NewRegistry()
	require.NoError(t, operations.RegisterStages(registry, env))
	assert.Equal(t, 13, registry.Count())

	ordered, err := registry.GetDependencyOrder()
	require.NoError(t, err)
	position := make(map[string]int, len(ordered))
	for i, s := range ordered {
		position[s.ID()] = i
	}
	for _, s := range ordered {
		for _, dep := range s.GetDependencies() {
			assert.Less(t, position[dep], position[s.ID()], "%s before %s", dep, s.ID())
		}
	}
	ids := make([]string, len(ordered))
	for i, s := range ordered {
		ids[i] = s.ID()
	}
	assert.Equal(t, []string{
		operations.StageIDCPIBaseline,
		operations.StageIDCPIInflation,
		operations.StageIDFXMonthly,
		operations.StageIDMerge,
		operations.StageIDCPICategories,
		operations.StageIDValidate,
		operations.StageIDLagProfile,
		operations.StageIDBaselines,
		operations.StageIDVolatility,
		operations.StageIDPersistence,
		operations.StageIDRollingPassThrough,
		operations.StageIDRollingCategories,
		operations.StageIDRegimeSummary,
	}, ids)
}
