package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/reporting"
)

var diffFormat string

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <a.json[.gz]> <b.json[.gz]>",
		Short: "Show what changed between two saved results files",
		Long: `Compare two results files and print the JSON patch (RFC 6902) that turns
the first into the second.

Run ids, timestamps and execution times are ignored, so two runs of the same
instance with the same answers show no differences.`,
		Args: cobra.ExactArgs(2),
		RunE: diffCommandE,
	}

	cmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func diffCommandE(cmd *cobra.Command, args []string) error {
	if !slices.Contains([]string{"text", "json"}, diffFormat) {
		return fmt.Errorf("unsupported format %q: must be text or json", diffFormat)
	}

	docs := make([][]byte, len(args))
	for i, path := range args {
		data, err := reporting.ReadRaw(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		docs[i] = data
	}

	patch, err := reporting.Diff(docs[0], docs[1])
	if err != nil {
		return fmt.Errorf("comparing results: %w", err)
	}

	out := cmd.OutOrStdout()
	if diffFormat == "json" {
		data, err := json.MarshalIndent(patch, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal patch: %w", err)
		}
		fmt.Fprintln(out, string(data)) //nolint:errcheck
		return nil
	}

	if len(patch) == 0 {
		fmt.Fprintln(out, "No differences.") //nolint:errcheck
		return nil
	}
	fmt.Fprint(out, reporting.FormatPatch(patch)) //nolint:errcheck
	return nil
}
