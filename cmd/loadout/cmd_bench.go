package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/solver"
	"github.com/spboyer/loadout/internal/spinner"
)

var (
	benchInstance   instanceFlags
	benchAlgorithms []string
	benchRuns       int
	benchTimeLimit  time.Duration
	benchFormat     string
)

func newBenchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench <pallets.csv>",
		Short: "Benchmark algorithms with repeated runs",
		Long: `Solve the same instance several times per algorithm and report timing
statistics: mean, standard deviation, min, max, p50, p95 and a 95% confidence
interval of the mean. Runs are sequential so timings do not interfere.`,
		Args: cobra.ExactArgs(1),
		RunE: benchCommandE,
	}

	benchInstance.register(cmd)
	cmd.Flags().StringSliceVar(&benchAlgorithms, "algorithms", nil, "Algorithms to run, comma-separated (default from config: all)")
	cmd.Flags().IntVarP(&benchRuns, "runs", "n", 0, "Runs per algorithm (default from config)")
	cmd.Flags().DurationVar(&benchTimeLimit, "time-limit", 0, "Time budget for brute force and ILP (e.g. 10s)")
	cmd.Flags().StringVarP(&benchFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

func benchCommandE(cmd *cobra.Command, args []string) error {
	if !slices.Contains([]string{"table", "json"}, benchFormat) {
		return fmt.Errorf("unsupported format %q: must be table or json", benchFormat)
	}
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	algs, err := algorithmsOrDefault(cfg, benchAlgorithms)
	if err != nil {
		return err
	}
	items, c, err := benchInstance.load(cmd, args[0])
	if err != nil {
		return err
	}
	runs := benchRuns
	if runs <= 0 {
		runs = cfg.Defaults.Runs
	}

	ctx := cmd.Context()
	optionsFor := solverOptions(cfg, benchTimeLimit)

	var results []*orchestration.BenchResult
	for _, alg := range algs {
		opts, err := optionsFor(alg)
		if err != nil {
			return err
		}
		s, err := solver.New(alg, opts)
		if err != nil {
			return err
		}

		stop := spinner.StartIfTerminal(os.Stderr, fmt.Sprintf("Benchmarking %s (%d runs)", alg.DisplayName(), runs))
		res, err := orchestration.Bench(ctx, s, items, c, runs)
		stop()
		if err != nil {
			if orchestration.IsInapplicable(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %v\n", alg.DisplayName(), err) //nolint:errcheck
				continue
			}
			return err
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if benchFormat == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal benchmark: %w", err)
		}
		fmt.Fprintln(out, string(data)) //nolint:errcheck
		return nil
	}
	reporting.WriteBench(out, results)
	return nil
}
