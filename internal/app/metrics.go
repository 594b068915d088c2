package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aatumaykin/janitor/internal/logger"
)

func promHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// serveMetrics serves /metrics until ctx is done.
func (a *App) serveMetrics(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.metricsServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	a.logger.Info("metrics endpoint listening", logger.Field{Key: "addr", Value: ln.Addr().String()})

	errCh := make(chan error, 1)
	go func() { errCh <- a.metricsServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", logger.Field{Key: "error", Value: err})
		}
		return nil
	}
}
