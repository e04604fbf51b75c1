package operations

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"fxcpi/internal/config"
	"fxcpi/internal/dataprocessing"
	"fxcpi/internal/exporter"
	"fxcpi/internal/infrastructure"
	"fxcpi/internal/passthrough"
	"fxcpi/pkg/contracts/domain"
)

// Env is what every stage needs to read inputs and write results
type Env struct {
	Config *config.Config
	Paths  *config.Paths
	Writer *exporter.CSVWriter
	Engine *passthrough.Engine
	Logger *slog.Logger
}

// NewEnv builds the stage environment of a run
func NewEnv(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *Env {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Env{
		Config: cfg,
		Paths:  paths,
		Writer: exporter.NewCSVWriter(paths, cfg.Paths.WriteBOM),
		Engine: passthrough.NewEngine(cfg.Analysis.RollingWindow, logger),
		Logger: logger,
	}
}

// stageLogger tags the environment logger with a stage ID
func (e *Env) stageLogger(stageID string) *slog.Logger {
	return e.Logger.With(slog.String("stage", stageID))
}

// requireTables checks that each shared table is either in the run context
// or already persisted by an earlier run
func (e *Env) requireTables(state *OperationState, keys ...string) error {
	for _, key := range keys {
		if _, ok := state.GetContext(key); ok {
			continue
		}
		path := e.Paths.ProcessedPath(processedFiles[key])
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("table %s not produced: %w", key, err)
		}
	}
	return nil
}

// requireFile checks that an input file exists
func requireFile(path string) error {
	if path == "" {
		return fmt.Errorf("input path not configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file unavailable: %w", err)
	}
	return nil
}

// loadTable returns a shared table, reading it back from the processed
// directory when this run did not produce it
func (e *Env) loadTable(state *OperationState, key string) (*domain.Table, error) {
	if t, err := state.GetTable(key); err == nil {
		return t, nil
	}

	path := e.Paths.ProcessedPath(processedFiles[key])
	t, err := exporter.ReadTable(path)
	if err != nil {
		return nil, err
	}
	state.SetContext(key, t)
	e.Logger.Debug("table_loaded",
		slog.String("table", key),
		slog.String("path", path),
		slog.Int("rows", t.Len()))
	return t, nil
}

// loadPanel returns the CPI panel of the run, loading it once
func (e *Env) loadPanel(state *OperationState) (*dataprocessing.Panel, error) {
	if v, ok := state.GetContext(ContextKeyPanel); ok {
		if p, ok := v.(*dataprocessing.Panel); ok {
			return p, nil
		}
	}
	p, err := dataprocessing.LoadPanel(e.Paths.CPIPanel)
	if err != nil {
		return nil, err
	}
	state.SetContext(ContextKeyPanel, p)
	return p, nil
}

// saveTable persists a shared table and publishes it to later stages
func (e *Env) saveTable(state *OperationState, stage *StepState, key string, t *domain.Table) error {
	file := processedFiles[key]
	if err := e.Writer.WriteTable(e.Paths.ProcessedPath(file), t); err != nil {
		return err
	}
	state.SetContext(key, t)
	stage.RecordOutput(file, t.Len())
	return nil
}

// writeOutput writes one analysis file and records its row count
func (e *Env) writeOutput(stage *StepState, file string, rows int, write func(path string) error) error {
	if err := write(e.Paths.OutputPath(file)); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	stage.RecordOutput(file, rows)
	return nil
}

// dateRange parses the configured analysis period
func (e *Env) dateRange() (start, end time.Time, err error) {
	if start, err = e.Config.Analysis.StartDate(); err != nil {
		return
	}
	end, err = e.Config.Analysis.EndDate()
	return
}
