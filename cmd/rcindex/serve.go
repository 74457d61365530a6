package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/rcindex/config"
	rcindexhttp "github.com/sagarc03/rcindex/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the rcindex HTTP server.

Per-request settings are read from the environment on every request:
  USERNAME, PASSWORD  enable basic auth when both are set
  CONFIG_BASE64       rclone config as base64
  CONFIG_URL          URL to fetch the rclone config from
  DARK_MODE           render the dark theme when true`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (env: RCINDEX_SERVER_HOST)")
	serveCmd.Flags().Int("port", 8080, "listen port (env: RCINDEX_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	handlerConfig := rcindexhttp.HandlerConfig{
		CORS:      cfg.CORS,
		RateLimit: cfg.Server.RateLimit,
		Settings:  config.NewEnvSource(),
	}
	handler := rcindexhttp.NewHandler(&handlerConfig, c.service)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A listing may take the full rclone timeout plus the kill grace.
		WriteTimeout: cfg.Rclone.Timeout + cfg.Rclone.KillGrace + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", server.Addr, "scratch", cfg.Scratch.Dir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
