package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxcpi/internal/config"
	"fxcpi/internal/infrastructure"
	"fxcpi/internal/operations"
)

// pipeline is a fully wired run: logger, telemetry and stage manager
type pipeline struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	manager   *operations.Manager
}

// registerStages is swapped in tests to fail setup after telemetry is up
var registerStages = operations.RegisterStages

// newPipeline resolves paths, starts logging and telemetry and registers
// every stage. Call close when done. On error everything started so far is
// released.
func newPipeline(cfg *config.Config) (_ *pipeline, err error) {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	cfg.Telemetry.TraceFile = paths.Resolve(cfg.Telemetry.TraceFile)
	cfg.Telemetry.MetricsTextfile = paths.Resolve(cfg.Telemetry.MetricsTextfile)

	p := &pipeline{cfg: cfg, paths: paths}
	defer func() {
		if err != nil {
			p.teardown()
		}
	}()

	p.logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution()

	p.providers, err = infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	env := operations.NewEnv(cfg, paths, p.logger)
	registry := operations.NewRegistry()
	if err := registerStages(registry, env); err != nil {
		return nil, err
	}

	p.manager, err = operations.NewManager(registry, operations.NewConfig(), p.providers, p.logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// execute runs either the whole pipeline or one stage, stopping on SIGINT or SIGTERM
func (p *pipeline) execute(step string) (*operations.OperationResponse, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := operations.OperationRequest{}
	if step != "" {
		req.Parameters = map[string]interface{}{operations.ParameterStep: step}
	}
	return p.manager.Execute(ctx, req)
}

// close flushes the metrics textfile and shuts down telemetry and the log file
func (p *pipeline) close() {
	if err := p.providers.WriteMetrics(p.cfg.Telemetry.MetricsTextfile); err != nil {
		p.logger.Warn("metrics_write_failed", slog.String("error", err.Error()))
	}
	p.teardown()
}

// teardown shuts down whatever newPipeline managed to start
func (p *pipeline) teardown() {
	if p.providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.providers.Shutdown(ctx); err != nil && p.logger != nil {
			p.logger.Warn("otel_shutdown_failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
