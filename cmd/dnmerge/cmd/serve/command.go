// Package serve provides the serve command, which runs the reconciliation
// HTTP service.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/server"
	"github.com/agentstation/dnmerge/pkg/constants"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the reconciliation HTTP API",
		Long: `Start the reconciliation HTTP service.

Features:
  - POST /api/v1/reconcile accepts the primary and secondary files as
    multipart fields and returns the workbook or a JSON report
  - GET /api/v1/results/{id} downloads a workbook produced by a JSON request
  - Run events over WebSocket (/api/v1/runs/ws) and SSE (/api/v1/runs/stream)
  - Optional API key authentication, CORS, and per-IP rate limiting
  - Health, readiness, and Prometheus metrics endpoints
  - Graceful shutdown with connection draining

Environment Variables:
  HTTP_PORT          - Override the listen port
  HTTP_HOST          - Override the bind address
  DNMERGE_API_KEY    - API key required when --auth is set`,
		Example: `  # Start on default port 8080
  dnmerge serve

  # Require an API key
  DNMERGE_API_KEY=secret dnmerge serve --auth

  # Allow a browser front end
  dnmerge serve --cors-origins https://app.example.com

  # Reconcile with curl
  curl -F primary=@deliveries.xlsx -F secondary=@report.csv \
    http://localhost:8080/api/v1/reconcile -o result.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", cfg.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
			}
			return Serve(cmd.Context(), app, cfg, ln, cmd.OutOrStdout())
		},
	}

	// Server configuration flags
	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	// CORS flags
	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	// Authentication flags
	cmd.Flags().Bool("auth", false, "Enable API key authentication")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Authentication header name")

	// Limits
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("result-ttl", defaults.ResultTTL, "How long workbooks stay downloadable")
	cmd.Flags().Int64("max-upload", defaults.MaxUploadSize, "Maximum request body size in bytes")
	cmd.Flags().Int("preview", defaults.PreviewRows, "Preview rows in JSON reports")

	// Timeout flags
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable the /metrics endpoint")

	return cmd
}

// configFromFlags builds a server configuration from flags and environment.
func configFromFlags(cmd *cobra.Command) (server.Config, error) {
	cfg := server.DefaultConfig()
	flags := cmd.Flags()

	cfg.Port, _ = flags.GetInt("port")
	cfg.Host, _ = flags.GetString("host")
	cfg.PathPrefix, _ = flags.GetString("prefix")
	cfg.CORSEnabled, _ = flags.GetBool("cors")
	cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	cfg.AuthEnabled, _ = flags.GetBool("auth")
	cfg.AuthHeader, _ = flags.GetString("auth-header")
	cfg.RateLimit, _ = flags.GetInt("rate-limit")
	cfg.ResultTTL, _ = flags.GetDuration("result-ttl")
	cfg.MaxUploadSize, _ = flags.GetInt64("max-upload")
	cfg.PreviewRows, _ = flags.GetInt("preview")
	cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	cfg.MetricsEnabled, _ = flags.GetBool("metrics")

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	// Environment overrides flags that were left at their defaults.
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !flags.Changed("port") {
		p, err := strconv.Atoi(envPort)
		if err != nil {
			return cfg, fmt.Errorf("invalid HTTP_PORT %q: %w", envPort, err)
		}
		cfg.Port = p
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !flags.Changed("host") {
		cfg.Host = envHost
	}
	cfg.APIKey = os.Getenv("DNMERGE_API_KEY")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Serve runs the service on ln until ctx is canceled, then drains
// connections and stops background services.
func Serve(ctx context.Context, app application.Application, cfg server.Config, ln net.Listener, w io.Writer) error {
	logger := app.Logger()

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	// Streams and WebSocket connections end once the background services stop.
	httpServer.RegisterOnShutdown(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services did not stop in time")
		}
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Str("prefix", cfg.PathPrefix).
			Bool("cors", cfg.CORSEnabled).
			Bool("auth", cfg.AuthEnabled).
			Int("rate_limit", cfg.RateLimit).
			Dur("result_ttl", cfg.ResultTTL).
			Msg("Server starting")
		serverErr <- httpServer.Serve(ln)
	}()

	fmt.Fprintf(w, "Serving dnmerge API on http://%s%s\n", ln.Addr(), cfg.PathPrefix)

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Dur("took", time.Since(start)).Msg("Server stopped gracefully")
	return nil
}
