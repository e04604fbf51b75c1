package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/internal/config"
	"fxcpi/internal/infrastructure"
	"fxcpi/internal/operations"
	"fxcpi/internal/operations/testutil"
)

// execute runs the command tree with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeConfig stores cfg as YAML in dir and returns its path
func writeConfig(t *testing.T, dir string, cfg *config.Config) string {
	t.Helper()
	data, err := cfg.Marshal()
	require.NoError(t, err)
	path := filepath.Join(dir, "fxcpi.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "--root", "/srv/fxcpi", "--log-level", "debug")
	require.NoError(t, err)

	assert.Contains(t, out, "root: /srv/fxcpi")
	assert.Contains(t, out, "level: debug")
	assert.Contains(t, out, "currency: USD")
	assert.Contains(t, out, "rolling_window: 24")
}

func TestConfigCommand_InvalidOverride(t *testing.T) {
	_, err := execute(t, "config", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command line override")
}

func TestStagesCommand(t *testing.T) {
	out, err := execute(t, "stages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 14)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], operations.StageIDCPIBaseline))
	assert.Contains(t, out, "cpi_inflation,fx_monthly")
}

func TestStageCommand_RequiresID(t *testing.T) {
	_, err := execute(t, "stage")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	fixture := testutil.NewPipelineFixture(t)
	cfg := fixture.Config
	cfg.Telemetry.MetricsTextfile = "analysis/outputs/fxcpi.prom"
	path := writeConfig(t, fixture.Root, cfg)

	out, err := execute(t, "run", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "completed")
	assert.Contains(t, out, config.FileRegimeTable+"(2)")
	assert.FileExists(t, fixture.Paths.OutputPath(config.FileRollingPassThrough))

	metrics, err := os.ReadFile(fixture.Paths.OutputPath("fxcpi.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "fxcpi_last_run_success 1")

	out, err = execute(t, "stage", operations.StageIDRegimeSummary, "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, operations.StageIDRegimeSummary)
}

func TestRunCommand_MissingInputs(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	fixture := testutil.NewPipelineFixture(t)
	fixture.RemoveRawInputs(t)
	path := writeConfig(t, fixture.Root, fixture.Config)

	out, err := execute(t, "run", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Contains(t, out, "skipped")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "fxcpi v"+config.AppVersion)
}

func TestNewPipeline_ReleasesOnSetupFailure(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	orig := registerStages
	registerStages = func(*operations.Registry, *operations.Env) error {
		return errors.New("stage wiring broken")
	}
	t.Cleanup(func() { registerStages = orig })

	fixture := testutil.NewPipelineFixture(t)
	cfg := fixture.Config
	cfg.Logging.Output = "file"
	cfg.Telemetry.EnableTracing = true
	cfg.Telemetry.TraceFile = "logs/trace.json"

	p, err := newPipeline(cfg)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.ErrorContains(t, err, "stage wiring broken")
	assert.False(t, infrastructure.LogFileOpen(), "log file is closed on setup failure")
	assert.FileExists(t, filepath.Join(fixture.Root, "logs", "trace.json"))
}
