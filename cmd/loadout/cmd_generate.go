package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/dataset"
)

var (
	generateOutputDir string
	generateOpts      dataset.GenerateOptions
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random pallets and trucks dataset",
		Long: `Generate a random instance as two CSV files, pallets.csv and trucks.csv,
in the layout the other commands read.

Weights and profits are integers so every algorithm, including dynamic
programming, can solve the result. Use --seed for a reproducible dataset.`,
		Args: cobra.NoArgs,
		RunE: generateCommandE,
	}

	cmd.Flags().StringVarP(&generateOutputDir, "output-dir", "d", ".", "Directory to write pallets.csv and trucks.csv into")
	cmd.Flags().IntVarP(&generateOpts.Items, "pallets", "n", 20, "Number of pallets")
	cmd.Flags().IntVar(&generateOpts.MaxWeight, "max-weight", 50, "Maximum pallet weight")
	cmd.Flags().IntVar(&generateOpts.MaxProfit, "max-profit", 100, "Maximum pallet profit")
	cmd.Flags().IntVar(&generateOpts.Trucks, "trucks", 1, "Number of trucks")
	cmd.Flags().Float64Var(&generateOpts.Fill, "fill", 0.5, "Truck capacity as a fraction of total pallet weight")
	cmd.Flags().IntVar(&generateOpts.MaxItems, "max-items", 0, "Pallet limit per truck (default: unlimited)")
	cmd.Flags().Uint64Var(&generateOpts.Seed, "seed", 0, "Random seed (default: time based)")

	return cmd
}

func generateCommandE(cmd *cobra.Command, _ []string) error {
	opts := generateOpts
	if !cmd.Flags().Changed("seed") {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	items, trucks := dataset.Generate(opts)

	if err := os.MkdirAll(generateOutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	palletsPath := filepath.Join(generateOutputDir, "pallets.csv")
	trucksPath := filepath.Join(generateOutputDir, "trucks.csv")

	if err := writeCSV(palletsPath, func(f *os.File) error { return dataset.WriteItems(f, items) }); err != nil {
		return err
	}
	if err := writeCSV(trucksPath, func(f *os.File) error { return dataset.WriteContainers(f, trucks) }); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %d pallets and %d truck(s) (seed %d)\n", len(items), len(trucks), opts.Seed) //nolint:errcheck
	fmt.Fprintf(out, "  %s\n  %s\n", palletsPath, trucksPath)                                                //nolint:errcheck
	fmt.Fprintln(out)                                                                                        //nolint:errcheck
	fmt.Fprintln(out, "Next steps:")                                                                         //nolint:errcheck
	fmt.Fprintf(out, "  loadout verify %s --trucks %s\n", palletsPath, trucksPath)                           //nolint:errcheck
	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
