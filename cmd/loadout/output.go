package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/projectconfig"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/storage"
)

var outputFormats = []string{"table", "json", "markdown", "html"}

// outputFlags controls how a command renders and persists its results.
type outputFlags struct {
	format    string
	output    string
	upload    bool
	uploadURL string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", projectconfig.DefaultFormat, "Output format: table, json, markdown or html")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Save results to a JSON file (gzip-compressed when it ends in .gz)")
	cmd.Flags().BoolVar(&f.upload, "upload", false, "Upload the saved results file to Azure Blob Storage")
	cmd.Flags().StringVar(&f.uploadURL, "upload-url", "", "Blob container URL for --upload (default: upload.container_url from config)")
}

// resolve applies the configured default format and checks the flags.
func (f *outputFlags) resolve(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) error {
	if !cmd.Flags().Changed("format") && cfg.Defaults.Format != "" {
		f.format = cfg.Defaults.Format
	}
	if !slices.Contains(outputFormats, f.format) {
		return fmt.Errorf("unsupported format %q: must be one of table, json, markdown, html", f.format)
	}
	if f.upload && f.output == "" {
		return errors.New("--upload requires --output")
	}
	return nil
}

// render writes r in the selected format. printTable handles the table format.
func (f *outputFlags) render(w io.Writer, r *reporting.Results, printTable func()) error {
	switch f.format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(w, string(data)) //nolint:errcheck
	case "markdown":
		fmt.Fprint(w, reporting.Markdown(r)) //nolint:errcheck
	case "html":
		page, err := reporting.HTML(r)
		if err != nil {
			return err
		}
		fmt.Fprint(w, page) //nolint:errcheck
	default:
		printTable()
	}
	return nil
}

// persist saves and optionally uploads r.
func (f *outputFlags) persist(ctx context.Context, cmd *cobra.Command, cfg *projectconfig.ProjectConfig, r *reporting.Results) error {
	if f.output == "" {
		return nil
	}
	if err := reporting.SaveJSON(f.output, r); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", f.output) //nolint:errcheck

	if !f.upload {
		return nil
	}
	target := f.uploadURL
	if target == "" {
		target = cfg.Upload.ContainerURL
	}
	if target == "" {
		return errors.New("--upload needs --upload-url or upload.container_url in config")
	}
	uploader, err := storage.NewBlobUploader(target)
	if err != nil {
		return err
	}
	blobURL, err := uploader.UploadFile(ctx, f.output, r.RunID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded to %s\n", blobURL) //nolint:errcheck
	return nil
}
