package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/moviesearch/infrastructure/api"
	"github.com/helixml/moviesearch/internal/config"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search API",
		Long: `Start the read-only HTTP search API.

Routes:
  GET  /healthz                 Liveness check
  GET  /api/v1/search?q=&limit= Rank movies against a query
  POST /api/v1/search           Rank movies against a query or a raw vector
  GET  /api/v1/stats            Loaded and embedded movie counts
  GET  /docs                    Swagger UI
  POST /mcp                     MCP over streamable HTTP

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  SEARCH_LIMIT                 Default result count (default: 10)
  (see 'moviesearch ingest --help' for storage and embedding settings)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port, origins)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allowed CORS origins (default: *)")

	return cmd
}

func runServe(envFile, host string, port int, origins []string) error {
	s, err := openSession(envFile, serveOverrides(host, port)...)
	if err != nil {
		return err
	}
	defer s.Close()

	var opts []api.ServerOption
	if len(origins) > 0 {
		opts = append(opts, api.WithCORSOrigins(origins...))
	}
	apiServer := api.NewAPIServer(s.client, s.client.Vectors(), s.client.SearchLimit(), version, s.logger, opts...)

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := s.cfg.Addr()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting moviesearch", slog.String("addr", addr), slog.String("version", version))
		if err := apiServer.ListenAndServe(addr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// serveOverrides applies command line flag overrides to the config.
func serveOverrides(host string, port int) []config.AppConfigOption {
	var opts []config.AppConfigOption
	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	return opts
}
