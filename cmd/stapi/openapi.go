package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/stapi"
)

func newOpenapiCmd(opts *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the example application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			app, err := opts.buildApp(cmd.Context(), cfg, nil, nil)
			if err != nil {
				return err
			}

			data, err := renderDocument(app.Document(), format)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			opts.diag.Success("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func renderDocument(doc *stapi.Document, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := jsoncodec.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return stapi.MarshalDocumentYAML(doc)
	default:
		return nil, fmt.Errorf("unknown format %q, expected json or yaml", format)
	}
}
