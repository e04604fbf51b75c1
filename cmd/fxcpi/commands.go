package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fxcpi/internal/config"
	"fxcpi/internal/operations"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every stage in dependency order",
		Long: `Run the full pipeline: extract the CPI baseline and categories, average
the FX workbook, merge, validate and then write every analysis output.
The run stops at the first failed stage and the remaining stages are
reported as skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, "")
		},
	}
}

func newStageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <id>",
		Short: "Run a single stage",
		Long: `Run one stage on its own. Inputs produced by earlier stages are read
back from the processed directory, so those stages must have run before.

Example usage:
  fxcpi stage merge
  fxcpi stage regime_summary --root ./project`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, args[0])
		},
	}
}

func newStagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List stages in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return listStages(cmd.OutOrStdout(), cfg)
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// runPipeline runs the pipeline, or one stage when step is set, and prints a summary
func runPipeline(cmd *cobra.Command, opts *options, step string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	resp, err := p.execute(step)
	if resp == nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), resp)
	if err != nil {
		return fmt.Errorf("run %s failed: %w", resp.ID, err)
	}
	return nil
}

// listStages prints id, name and dependencies in execution order
func listStages(w io.Writer, cfg *config.Config) error {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return err
	}

	env := operations.NewEnv(cfg, paths, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	registry := operations.NewRegistry()
	if err := operations.RegisterStages(registry, env); err != nil {
		return err
	}
	ordered, err := registry.GetDependencyOrder()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEPENDS ON")
	for _, s := range ordered {
		deps := strings.Join(s.GetDependencies(), ",")
		if deps == "" {
			deps = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID(), s.Name(), deps)
	}
	return tw.Flush()
}

// printSummary prints one line per stage: status, duration, outputs and unstable estimates
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	fmt.Fprintf(w, "Run %s: %s in %s\n\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATUS\tDURATION\tOUTPUTS\tUNSTABLE\tNOTE")
	for _, id := range resp.Order {
		st, ok := resp.Steps[id]
		if !ok {
			continue
		}
		note := st.Message
		if st.Error != nil {
			note = st.Error.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			id, st.GetStatus(), st.Duration().Round(time.Millisecond), formatOutputs(st.GetOutputs()), st.GetUnstable(), note)
	}
	tw.Flush()
}

func formatOutputs(outputs map[string]int) string {
	if len(outputs) == 0 {
		return "-"
	}
	files := make([]string, 0, len(outputs))
	for f := range outputs {
		files = append(files, f)
	}
	sort.Strings(files)

	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = fmt.Sprintf("%s(%d)", f, outputs[f])
	}
	return strings.Join(parts, " ")
}
