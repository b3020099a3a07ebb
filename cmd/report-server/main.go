// Command report-server runs the Breakups Report HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"breakupscli/internal/config"
	"breakupscli/internal/infrastructure"
	"breakupscli/internal/services"
	transporthttp "breakupscli/internal/transport/http"
	"breakupscli/internal/websocket"
	"breakupscli/pkg/contracts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "report-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("prepare data directories: %w", err)
	}

	hub := websocket.NewHub(logger, cfg.WebSocket)
	defer hub.Close()

	service := services.NewReportService(logger, cfg, hub, nil)
	router := transporthttp.NewRouter(logger, cfg, service, hub, contracts.Version)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", cfg.Server.Port),
			slog.String("version", contracts.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
