package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	server "outbreak/server"
	servernet "outbreak/server/internal/net"
	"outbreak/server/internal/observability"
	"outbreak/server/internal/telemetry"
	"outbreak/server/logging"
	loggingSinks "outbreak/server/logging/sinks"
)

const (
	defaultListenAddr = ":8080"
	shutdownTimeout   = 5 * time.Second
)

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	// Getenv overrides os.Getenv, mainly for tests.
	Getenv func(string) string
}

// Run wires the logging router, hub and HTTP server and blocks until ctx is
// cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := telemetry.Default(cfg.Logger)

	var fallback io.Writer
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallback = candidate.Writer()
		}
	}

	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	settings := loadSettings(cfg, getenv, telemetryLogger)

	sinks, err := buildSinks(settings.logging)
	if err != nil {
		return err
	}
	router, err := logging.NewRouterWithFallback(logging.ClockFunc(time.Now), settings.logging, sinks, fallback)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	settings.hub.Logger = telemetryLogger
	hub, err := server.NewHub(settings.hub, router)
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}
	defer hub.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go hub.RunSimulation(runCtx)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:        telemetryLogger,
		Observability: settings.observability,
	})

	srv := &http.Server{Addr: settings.listenAddr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildSinks(cfg logging.Config) ([]logging.NamedSink, error) {
	sinks := []logging.NamedSink{
		{Name: logging.SinkConsole, Sink: loggingSinks.NewConsoleSink(os.Stdout)},
	}
	if !cfg.HasSink(logging.SinkJSON) || cfg.JSON.FilePath == "" {
		return sinks, nil
	}
	file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open json log %q: %w", cfg.JSON.FilePath, err)
	}
	sinks = append(sinks, logging.NamedSink{
		Name: logging.SinkJSON,
		Sink: loggingSinks.NewJSON(file, cfg.JSON.FlushInterval),
	})
	return sinks, nil
}
