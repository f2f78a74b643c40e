package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/solver"
)

var (
	showOutput    outputFlags
	showSolutions bool
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <results.json[.gz]>",
		Short: "Render a saved results file",
		Long: `Render a results file written with --output in any output format.

Use --format markdown or --format html to turn a saved run into a report.`,
		Args: cobra.ExactArgs(1),
		RunE: showCommandE,
	}

	cmd.Flags().StringVarP(&showOutput.format, "format", "f", "table", "Output format: table, json, markdown or html")
	cmd.Flags().BoolVar(&showSolutions, "solutions", false, "Also list the selected pallets of every solution (table format)")

	return cmd
}

func showCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if err := showOutput.resolve(cmd, cfg); err != nil {
		return err
	}

	r, err := reporting.LoadJSON(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	return showOutput.render(out, r, func() {
		fmt.Fprintf(out, "Run %s (%s)\n\n", r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05 MST")) //nolint:errcheck
		reporting.WriteComparison(out, r.Container, outcomesFromResults(r))
		if r.Verification != nil {
			reporting.WriteVerification(out, r.Verification)
			fmt.Fprintln(out) //nolint:errcheck
		}
		if showSolutions {
			for _, sol := range r.Solutions {
				reporting.WriteSolution(out, sol)
				fmt.Fprintln(out) //nolint:errcheck
			}
		}
	})
}

// outcomesFromResults rebuilds runner outcomes from a saved results file.
func outcomesFromResults(r *reporting.Results) []orchestration.Outcome {
	outcomes := make([]orchestration.Outcome, 0, len(r.Solutions)+len(r.Failures))
	for _, sol := range r.Solutions {
		alg, err := solver.ParseAlgorithm(sol.Algorithm)
		if err != nil {
			alg = solver.Algorithm(sol.Algorithm)
		}
		outcomes = append(outcomes, orchestration.Outcome{Algorithm: alg, Solution: sol})
	}
	for _, f := range r.Failures {
		outcomes = append(outcomes, orchestration.Outcome{Algorithm: f.Algorithm, Err: errors.New(f.Error)})
	}
	return outcomes
}
