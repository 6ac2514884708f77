package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cv-backend/internal/analyses"
	"cv-backend/internal/extract"
	"cv-backend/internal/infer"
)

type extractOptions struct {
	mime     string
	format   string
	textOnly bool
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Recover text from a CV and infer its structured fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.mime, "mime", "", "declared media type (default: detected from the file)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.textOnly, "text", false, "print the recovered text instead of structured fields")
	return cmd
}

func runExtract(out, errOut io.Writer, path string, opts *extractOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported format %q (want json or yaml)", opts.format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > analyses.MaxUploadBytes {
		fmt.Fprintf(errOut, "warning: %s is larger than the 5 MiB upload limit\n", filepath.Base(path))
	}

	doc := extract.NewDocument(data, opts.mime, filepath.Base(path))
	if !extract.IsSupported(doc.MediaType) {
		return fmt.Errorf("unsupported media type %q (use --mime)", doc.MediaType)
	}
	res := extract.New().Extract(doc)
	fmt.Fprintf(errOut, "media type: %s, strategy: %s\n", doc.MediaType, res.Strategy)

	if opts.textOnly {
		_, err := fmt.Fprintln(out, res.Text)
		return err
	}

	structured := infer.New().Infer(res.Text)
	analyses.NormalizeContact(&structured)

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(structured); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(structured)
	}
}
