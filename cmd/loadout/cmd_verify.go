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
	verifyInstance   instanceFlags
	verifyOutput     outputFlags
	verifyAlgorithms []string
	verifyWorkers    int
	verifyTimeLimit  time.Duration
	verifyTolerance  float64
	verifyJUnit      string
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <pallets.csv>",
		Short: "Cross-check that the exact algorithms agree on the optimum",
		Long: `Run the algorithms on one instance and check that every exact solver
that completed reports the same optimal profit, and that every solution
respects the truck's capacity and pallet limit.

Greedy answers below the optimum are reported but do not fail verification.
Exits with code 1 when verification fails.`,
		Args: cobra.ExactArgs(1),
		RunE: verifyCommandE,
	}

	verifyInstance.register(cmd)
	verifyOutput.register(cmd)
	cmd.Flags().StringSliceVar(&verifyAlgorithms, "algorithms", nil, "Algorithms to run, comma-separated (default from config: all)")
	cmd.Flags().IntVar(&verifyWorkers, "workers", 0, "Number of algorithms to run at once (default from config)")
	cmd.Flags().DurationVar(&verifyTimeLimit, "time-limit", 0, "Time budget for brute force and ILP (e.g. 10s)")
	cmd.Flags().Float64Var(&verifyTolerance, "tolerance", 0, "Absolute profit tolerance (default from config)")
	cmd.Flags().StringVar(&verifyJUnit, "junit", "", "Write a JUnit XML report to this path")

	return cmd
}

func verifyCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if err := verifyOutput.resolve(cmd, cfg); err != nil {
		return err
	}
	algs, err := algorithmsOrDefault(cfg, verifyAlgorithms)
	if err != nil {
		return err
	}
	items, c, err := verifyInstance.load(cmd, args[0])
	if err != nil {
		return err
	}

	tol := verifyTolerance
	if tol <= 0 {
		tol = cfg.Defaults.Tolerance
	}

	ctx := cmd.Context()
	runner := newRunner(cfg, nil, verifyWorkers, verifyTimeLimit)

	stop := spinner.StartIfTerminal(os.Stderr, fmt.Sprintf("Verifying %d algorithms on %d pallets", len(algs), len(items)))
	outcomes := runner.Run(ctx, items, c, algs)
	stop()

	r := reporting.NewResults(args[0], items, c, outcomes)
	r.Verification = orchestration.Verify(outcomes, tol)

	out := cmd.OutOrStdout()
	err = verifyOutput.render(out, r, func() {
		reporting.WriteComparison(out, c, outcomes)
		reporting.WriteVerification(out, r.Verification)
	})
	if err != nil {
		return err
	}

	if verifyJUnit != "" {
		if err := reporting.WriteJUnitXML(r, verifyJUnit); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
	}
	if err := verifyOutput.persist(ctx, cmd, cfg, r); err != nil {
		return err
	}

	if !r.Verification.Passed() {
		return &VerificationError{
			Message: fmt.Sprintf("verification failed: %d mismatch(es)", len(r.Verification.Mismatches())),
		}
	}
	return nil
}
