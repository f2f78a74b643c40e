package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/validation"
	"github.com/spboyer/loadout/schemas"
)

var (
	schemaConfig   bool
	schemaValidate string
)

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of results files",
		Long: `Print the JSON schema of the results files written with --output.

With --project-config, print the schema used to validate .loadout.yaml instead.
With --validate, check a config file against that schema and list every problem.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if schemaValidate != "" {
				return validateConfig(cmd, schemaValidate)
			}
			if schemaConfig {
				fmt.Fprint(out, schemas.ConfigSchemaJSON) //nolint:errcheck
				return nil
			}
			data, err := reporting.Schema()
			if err != nil {
				return fmt.Errorf("reflecting results schema: %w", err)
			}
			fmt.Fprintln(out, string(data)) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().BoolVar(&schemaConfig, "project-config", false, "Print the .loadout.yaml schema")
	cmd.Flags().StringVar(&schemaValidate, "validate", "", "Validate a .loadout.yaml file instead of printing a schema")

	return cmd
}

func validateConfig(cmd *cobra.Command, path string) error {
	errs, err := validation.ValidateConfigFile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintf(out, "%s is valid\n", path) //nolint:errcheck
		return nil
	}
	for _, e := range errs {
		fmt.Fprintf(out, "  %s\n", e) //nolint:errcheck
	}
	return errors.New(path + " does not match the config schema")
}
