package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fxcpi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, 24, cfg.Analysis.RollingWindow)
				assert.Equal(t, 6, cfg.Analysis.VolatilityWindow)
				assert.Equal(t, 12, cfg.Analysis.MaxLag)
				assert.Equal(t, "USD", cfg.Analysis.Currency)
				assert.Equal(t, "2020-02-01", cfg.Analysis.Start)
				assert.Equal(t, "2025-12-01", cfg.Analysis.End)
				assert.Len(t, cfg.Analysis.Categories, 10)
				assert.Len(t, cfg.Analysis.Regimes, 2)
			},
		},
		{
			name: "yaml file overrides defaults",
			file: `
logging:
  level: debug
analysis:
  rolling_window: 36
  currency: EUR
  regimes:
    - name: early
      start: "2020-01-01"
      end: "2021-12-31"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 36, cfg.Analysis.RollingWindow)
				assert.Equal(t, "EUR", cfg.Analysis.Currency)
				require.Len(t, cfg.Analysis.Regimes, 1)
				assert.Equal(t, "early", cfg.Analysis.Regimes[0].Name)
				// untouched keys keep their defaults
				assert.Equal(t, 6, cfg.Analysis.VolatilityWindow)
			},
		},
		{
			name: "env overrides file",
			file: "analysis:\n  rolling_window: 36\n",
			env: map[string]string{
				"FXCPI_ANALYSIS_ROLLING_WINDOW": "12",
				"FXCPI_ANALYSIS_BASELINE_LAGS":  "0,3,6",
				"FXCPI_LOGGING_OUTPUT":          "both",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 12, cfg.Analysis.RollingWindow)
				assert.Equal(t, []int{0, 3, 6}, cfg.Analysis.BaselineLags)
				assert.Equal(t, "both", cfg.Logging.Output)
			},
		},
		{
			name:    "window too small",
			env:     map[string]string{"FXCPI_ANALYSIS_ROLLING_WINDOW": "2"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"FXCPI_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "start after end",
			env:     map[string]string{"FXCPI_ANALYSIS_START": "2026-01-01"},
			wantErr: true,
		},
		{
			name:    "malformed date",
			env:     map[string]string{"FXCPI_ANALYSIS_END": "2025-M12"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "analysis: [unclosed",
			wantErr: true,
		},
		{
			name:    "unknown rolling category",
			file:    "analysis:\n  rolling_categories: [headline, energy]\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	regimes, err := cfg.Analysis.RegimeList()
	require.NoError(t, err)
	require.Len(t, regimes, 2)
	assert.Equal(t, 2022, regimes[0].Start.Year())
	assert.Equal(t, 31, regimes[0].End.Day())

	events, err := cfg.Analysis.EventList()
	require.NoError(t, err)
	assert.Len(t, events, 5)

	pre, post, err := cfg.Analysis.SplitDates()
	require.NoError(t, err)
	assert.True(t, pre.Before(post))

	code, ok := cfg.Analysis.CategoryCode("food")
	assert.True(t, ok)
	assert.Equal(t, "MRT.CPI.CP01.IX.M", code)
	_, ok = cfg.Analysis.CategoryCode("energy")
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"regime ends before start", func(c *Config) {
			c.Analysis.Regimes = []RegimeSpec{{Name: "bad", Start: "2023-01-01", End: "2022-01-01"}}
		}},
		{"duplicate category", func(c *Config) {
			c.Analysis.Categories = append(c.Analysis.Categories, CategorySpec{Name: "food", Code: "X"})
		}},
		{"bad event date", func(c *Config) {
			c.Analysis.Events = []EventSpec{{Date: "March 2020", Label: "COVID"}}
		}},
		{"missing country", func(c *Config) {
			c.Analysis.Country = ""
		}},
		{"bad sample ratio", func(c *Config) {
			c.Telemetry.SampleRatio = 2
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := writeConfigFile(t, string(data))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Analysis, loaded.Analysis)
	assert.Equal(t, cfg.Paths, loaded.Paths)
}
