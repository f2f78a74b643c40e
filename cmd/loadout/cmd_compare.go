package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/spinner"
)

var (
	compareInstance   instanceFlags
	compareOutput     outputFlags
	compareAlgorithms []string
	compareWorkers    int
	compareTimeLimit  time.Duration
	compareCache      bool
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <pallets.csv>",
		Short: "Run several algorithms on the same instance side by side",
		Long: `Run several algorithms concurrently on one instance and compare their
profit, weight, pallet count and execution time.

A failing algorithm (for example dynamic programming on fractional weights)
is reported in its row and does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: compareCommandE,
	}

	compareInstance.register(cmd)
	compareOutput.register(cmd)
	cmd.Flags().StringSliceVar(&compareAlgorithms, "algorithms", nil, "Algorithms to run, comma-separated (default from config: all)")
	cmd.Flags().IntVar(&compareWorkers, "workers", 0, "Number of algorithms to run at once (default from config)")
	cmd.Flags().DurationVar(&compareTimeLimit, "time-limit", 0, "Time budget for brute force and ILP (e.g. 10s)")
	cmd.Flags().BoolVar(&compareCache, "cache", false, "Reuse and store solutions in the solution cache")

	return cmd
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if err := compareOutput.resolve(cmd, cfg); err != nil {
		return err
	}
	algs, err := algorithmsOrDefault(cfg, compareAlgorithms)
	if err != nil {
		return err
	}
	items, c, err := compareInstance.load(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeCache, err := openCache(ctx, cfg, compareCache)
	if err != nil {
		return err
	}
	defer closeCache()

	runner := newRunner(cfg, store, compareWorkers, compareTimeLimit)

	stop := spinner.StartIfTerminal(os.Stderr, fmt.Sprintf("Running %d algorithms on %d pallets", len(algs), len(items)))
	outcomes := runner.Run(ctx, items, c, algs)
	stop()

	r := reporting.NewResults(args[0], items, c, outcomes)
	out := cmd.OutOrStdout()
	err = compareOutput.render(out, r, func() {
		reporting.WriteComparison(out, c, outcomes)
	})
	if err != nil {
		return err
	}
	if err := compareOutput.persist(ctx, cmd, cfg, r); err != nil {
		return err
	}
	if len(orchestration.Solutions(outcomes)) == 0 {
		return fmt.Errorf("no algorithm produced a solution: %w", orchestration.FirstError(outcomes))
	}
	return nil
}
