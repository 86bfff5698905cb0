package stapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run serves app on cfg.Addr() and, when enabled, the metrics of gatherer
// on cfg.Metrics.Address. It blocks until ctx is done or a listener fails,
// then shuts everything down within cfg.ShutdownTimeout.
func Run(ctx context.Context, app *App, cfg *Config, gatherer prometheus.Gatherer) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server",
			zap.String("addr", cfg.Addr()),
			zap.String("server", app.Server().Name()),
		)
		if err := app.Server().Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			app.logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Address))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := app.Server().Stop(shutdownCtx)
		if metricsServer != nil {
			err = errors.Join(err, metricsServer.Shutdown(shutdownCtx))
		}
		return err
	})

	return g.Wait()
}
