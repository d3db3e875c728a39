package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/metrics"
	httpadapter "github.com/aretw0/wayfinder/pkg/adapters/http"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewServeHandler assembles the HTTP API over backend: one session manager
// whose routers publish to the event streams and the metrics registry.
func NewServeHandler(cfg config.Config, backend *Backend, logger *slog.Logger) (http.Handler, error) {
	streams := httpadapter.NewStreamManager(logger)
	m := metrics.New()
	sessions := NewSessionManager(cfg, backend, logger, streams.RouterOptions, m.RouterOptions)
	return httpadapter.NewHandler(sessions,
		httpadapter.WithLogger(logger),
		httpadapter.WithStreams(streams),
		httpadapter.WithMetricsHandler(m.Handler()),
	)
}

// RunServer serves the HTTP API until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	handler, err := NewServeHandler(cfg, backend, logger)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(fmt.Sprintf(":%d", cfg.HTTP.Port), handler)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
