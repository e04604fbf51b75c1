package operations

// NewStages returns every pipeline stage in registration order
func NewStages(env *Env) []Step {
	return []Step{
		NewCPIBaselineStage(env),
		NewCPIInflationStage(env),
		NewFXMonthlyStage(env),
		NewMergeStage(env),
		NewCPICategoriesStage(env),
		NewValidateStage(env),
		NewLagProfileStage(env),
		NewBaselinesStage(env),
		NewVolatilityStage(env),
		NewPersistenceStage(env),
		NewRollingPassThroughStage(env),
		NewRollingCategoriesStage(env),
		NewRegimeSummaryStage(env),
	}
}

// RegisterStages registers every pipeline stage and checks the dependency graph
func RegisterStages(registry *Registry, env *Env) error {
	for _, s := range NewStages(env) {
		if err := registry.Register(s); err != nil {
			return err
		}
	}
	return registry.ValidateDependencies()
}
