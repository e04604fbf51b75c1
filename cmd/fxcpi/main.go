package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fxcpi/internal/config"
	"fxcpi/pkg/contracts"
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	root       string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the fxcpi command tree
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fxcpi",
		Short: "FX to CPI pass-through analysis pipeline",
		Long: `fxcpi turns a CPI panel and a workbook of daily exchange rates into
monthly inflation and FX tables, then estimates how exchange rate moves
pass through to consumer prices: lag profiles, baseline regressions,
volatility, persistence, rolling coefficients and regime comparisons.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: fxcpi.yaml if present)")
	root.PersistentFlags().StringVar(&opts.root, "root", "", "Project root that relative paths resolve against")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(opts),
		newStageCmd(opts),
		newStagesCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig loads the configuration and applies the command line overrides
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.root != "" {
		cfg.Paths.Root = opts.root
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line override: %w", err)
	}
	return cfg, nil
}
