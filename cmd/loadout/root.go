package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadout",
		Short: "Loadout - choose which pallets to load onto a truck",
		Long: `Loadout picks the subset of pallets that maximises profit without
exceeding a truck's weight capacity or pallet limit.

It ships five solvers (brute force, backtracking, dynamic programming, greedy
and integer linear programming) and tools to compare, cross-verify and
benchmark them.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a .loadout.yaml (default: search upward from the working directory)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newSolveCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newVerifyCommand())
	cmd.AddCommand(newBenchCommand())
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newDiffCommand())
	cmd.AddCommand(newSchemaCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newMenuCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
