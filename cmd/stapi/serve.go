package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/stlmpp/stapi/internal/logging"
	"github.com/stlmpp/stapi/pkg/stapi"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the example application",
		Long: `Serves the example application until interrupted. The OpenAPI
document is available on /openapi.json and /openapi.yaml, the viewer on
/openapi. Prometheus metrics are exposed on the metrics address when
enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *options) error {
	opts.diag.Section("stapi")

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		opts.diag.Error("%v", err)
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	var metrics *stapi.Metrics
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = stapi.NewMetrics(registry)
		if err := metrics.Register(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := opts.buildApp(ctx, cfg, logger, metrics)
	if err != nil {
		opts.diag.Error("%v", err)
		return err
	}

	opts.diag.Success("Serving %d routes on %s (%s)", len(app.Routes().GetAllRoutes()), cfg.Addr(), app.Server().Name())
	if opts.apiKey == "" {
		opts.diag.Warn("No --api-key given: the guarded routes reject every request")
	}

	if err := stapi.Run(ctx, app, cfg, registry); err != nil {
		opts.diag.Error("Server stopped: %v", err)
		return err
	}
	opts.diag.Info("Server stopped")
	return nil
}
