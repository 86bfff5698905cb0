package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stlmpp/stapi/internal/diagnostics"
	"github.com/stlmpp/stapi/internal/exampleapp"
	"github.com/stlmpp/stapi/internal/ids"
	"github.com/stlmpp/stapi/pkg/stapi"
	"github.com/stlmpp/stapi/pkg/stapi/adapters"
)

// options holds the global flags
type options struct {
	configPath string
	apiKey     string
	verbose    bool
	quiet      bool

	diag *diagnostics.System
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stapi",
		Short: "Serve and document the stapi example application",
		Long: `stapi runs the example application on one of the supported HTTP
frameworks (echo, gin, fiber, mux) and renders its OpenAPI document.

Configuration is read from an optional YAML file and PORT / STAPI_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := diagnostics.Info
			switch {
			case opts.quiet:
				level = diagnostics.Error
			case opts.verbose:
				level = diagnostics.Verbose
			}
			opts.diag = diagnostics.NewWithWriters(level, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.apiKey, "api-key", "", "key accepted by the example guard (x-api-key header)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors")

	root.AddCommand(newServeCmd(opts), newOpenapiCmd(opts), newRoutesCmd(opts))
	return root
}

// loadConfig reads the configuration, reporting failures through the
// diagnostics output.
func (o *options) loadConfig() (*stapi.Config, error) {
	cfg, err := stapi.LoadConfig(o.configPath)
	if err != nil {
		o.diag.Error("Invalid configuration: %v", err)
		return nil, err
	}
	o.diag.Verbose("Server adapter: %s", cfg.Server)
	o.diag.Verbose("Listen address: %s", cfg.Addr())
	return cfg, nil
}

// buildApp compiles the example application on the configured adapter
func (o *options) buildApp(ctx context.Context, cfg *stapi.Config, logger *zap.Logger, metrics *stapi.Metrics) (*stapi.App, error) {
	server, err := adapters.New(cfg.Server)
	if err != nil {
		return nil, err
	}
	generate, err := ids.ForFormat(cfg.IDFormat)
	if err != nil {
		return nil, err
	}

	registry := stapi.NewRegistry()
	exampleapp.Register(registry)

	app, err := stapi.New(ctx, stapi.Options{
		Server:      server,
		Registry:    registry,
		Controllers: exampleapp.Controllers(),
		Resolver:    exampleapp.Resolver(o.apiKey, exampleapp.SeedUsers()),
		Logger:      logger,
		Metrics:     metrics,
		IDs:         generate,
		Info: stapi.Info{
			Title:       cfg.OpenAPI.Title,
			Version:     cfg.OpenAPI.Version,
			Description: cfg.OpenAPI.Description,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	return app, nil
}
