// Package operations runs the pass-through pipeline as a sequence of
// stages with declared dependencies.
//
// Core Components:
//
// Manager: Resolves the stages of a request, runs them in dependency order
// under a per-stage timeout, and stops at the first failure. Later stages are
// marked skipped. Every run and stage gets a span and stage metrics.
//
// Step: One unit of work. Steps read shared tables from the run context,
// falling back to the processed directory, so a single stage can be rerun
// on the files of an earlier run.
//
// Registry: Holds the registered steps and orders them topologically. Steps
// that become ready together keep their registration order.
//
// State: Tracks the run and each stage, including the files written, their
// row counts and the number of estimates reported as missing.
//
// Example usage:
//
//	env := operations.NewEnv(cfg, paths, logger)
//	registry := operations.NewRegistry()
//	if err := operations.RegisterStages(registry, env); err != nil {
//		return err
//	}
//	manager, err := operations.NewManager(registry, operations.NewConfig(), providers, logger)
//	if err != nil {
//		return err
//	}
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
