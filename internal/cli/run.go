package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/avinashk/batchrun/internal/config"
	"github.com/avinashk/batchrun/internal/output"
	"github.com/avinashk/batchrun/runner"
	"github.com/spf13/cobra"
)

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <batch-file>",
		Short: "Execute a batch of command tasks",
		Long: `Run executes every task in the batch file with bounded parallelism.

The batch file is YAML:

  name: nightly
  defaults:
    parallel: 4
    timeout: 30s
    fastFail: true
  tasks:
    - label: unit-tests
      command: go
      args: ["test", "./..."]
    - label: lint
      command: golangci-lint
      args: ["run"]

The command exits non-zero when any task failed or was terminated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0])
		},
	}

	cmd.Flags().IntP("parallel", "p", 0, "maximum number of concurrent tasks (overrides batch file)")
	cmd.Flags().Duration("timeout", 0, "per-task timeout (overrides batch file)")
	cmd.Flags().Bool("fast-fail", false, "abort the batch on the first failure")
	cmd.Flags().Bool("progress", false, "print a progress line on every task completion")
	cmd.Flags().StringP("output", "o", "", "output format (table, json, yaml)")
	cmd.Flags().Bool("wide", false, "include result and error columns in table output")

	return cmd
}

func runBatch(cmd *cobra.Command, batchFile string) error {
	cfg, err := config.NewManager(batchFile).Load()
	if err != nil {
		return err
	}

	applyFlagOverrides(cmd, cfg)

	noColor, _ := cmd.Flags().GetBool("no-color")
	wide, _ := cmd.Flags().GetBool("wide")

	formatter := output.NewFormatter(
		output.Format(cfg.Defaults.OutputFormat),
		output.WithNoColor(noColor || cfg.Defaults.NoColor),
		output.WithWide(wide),
	)

	opts := runner.Options{
		Name:           cfg.Name,
		MaxConcurrency: cfg.Defaults.Parallel,
		Timeout:        cfg.Defaults.Timeout,
		FastFail:       cfg.Defaults.FastFail,
		LogErrors:      cfg.Defaults.LogErrors,
		Processes:      true,
		Logger:         slog.Default(),
		Reporter:       output.NewReporter(os.Stdout, formatter),
	}

	if cfg.Defaults.Progress {
		bar := output.NewProgressBar(os.Stderr, cfg.Name, noColor || cfg.Defaults.NoColor)
		opts.ProgressStats = true
		opts.Progress = bar.Update
	}

	r := runner.New(opts)
	for _, task := range cfg.Tasks {
		if err := r.AddCommand(task.Label, task.Command, task.Args...); err != nil {
			return err
		}
	}

	start := time.Now()
	results, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	slog.Debug("batch finished", "batch", cfg.Name, "duration", time.Since(start))

	if verifyErr := results.Verify(fmt.Sprintf("batch %q failed", cfg.Name)); verifyErr != nil {
		return verifyErr
	}
	return nil
}

// applyFlagOverrides lets run flags win over the batch file's defaults.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.BatchConfig) {
	if parallel, _ := cmd.Flags().GetInt("parallel"); parallel > 0 {
		cfg.Defaults.Parallel = parallel
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Defaults.Timeout = timeout
	}
	if cmd.Flags().Changed("fast-fail") {
		fastFail, _ := cmd.Flags().GetBool("fast-fail")
		cfg.Defaults.FastFail = fastFail
	}
	if cmd.Flags().Changed("progress") {
		progress, _ := cmd.Flags().GetBool("progress")
		cfg.Defaults.Progress = progress
	}
	if format, _ := cmd.Flags().GetString("output"); format != "" {
		cfg.Defaults.OutputFormat = format
	}
}
