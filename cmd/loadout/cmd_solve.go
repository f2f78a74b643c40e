package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/solver"
	"github.com/spboyer/loadout/internal/spinner"
)

var (
	solveInstance  instanceFlags
	solveOutput    outputFlags
	solveAlgorithm string
	solveTimeLimit time.Duration
	solveCache     bool
)

func newSolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <pallets.csv>",
		Short: "Solve one instance with one algorithm",
		Long: `Choose the most profitable set of pallets for a truck.

Pallets are read from a CSV file with pallet, weight and profit columns. The
truck comes from --capacity (and --max-items) or from a trucks CSV file.
Use "-" to read pallets from standard input.`,
		Example: `  loadout solve pallets.csv --capacity 100
  loadout solve pallets.csv --trucks trucks.csv --truck 2 -a bt
  loadout solve pallets.csv -c 500 -k 10 -a ilp -o results/run.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: solveCommandE,
	}

	solveInstance.register(cmd)
	solveOutput.register(cmd)
	cmd.Flags().StringVarP(&solveAlgorithm, "algorithm", "a", "", "Algorithm: brute-force, backtracking, dynamic-programming, greedy, ilp (default from config)")
	cmd.Flags().DurationVar(&solveTimeLimit, "time-limit", 0, "Time budget for brute force and ILP (e.g. 10s)")
	cmd.Flags().BoolVar(&solveCache, "cache", false, "Reuse and store solutions in the solution cache")

	return cmd
}

func solveCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if err := solveOutput.resolve(cmd, cfg); err != nil {
		return err
	}

	alg, err := cfg.Algorithm()
	if solveAlgorithm != "" {
		alg, err = solver.ParseAlgorithm(solveAlgorithm)
	}
	if err != nil {
		return err
	}

	items, c, err := solveInstance.load(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeCache, err := openCache(ctx, cfg, solveCache)
	if err != nil {
		return err
	}
	defer closeCache()

	runner := newRunner(cfg, store, 1, solveTimeLimit)

	stop := spinner.StartIfTerminal(os.Stderr, fmt.Sprintf("Solving %d pallets with %s", len(items), alg.DisplayName()))
	outcome := runner.Solve(ctx, alg, items, c)
	stop()

	if outcome.Err != nil {
		return fmt.Errorf("%s: %w", alg.DisplayName(), outcome.Err)
	}

	r := reporting.NewResults(args[0], items, c, []orchestration.Outcome{outcome})
	out := cmd.OutOrStdout()
	err = solveOutput.render(out, r, func() {
		reporting.WriteSolution(out, outcome.Solution)
		if outcome.Cached {
			fmt.Fprintln(out, "\n  (from cache)") //nolint:errcheck
		}
	})
	if err != nil {
		return err
	}
	return solveOutput.persist(ctx, cmd, cfg, r)
}
