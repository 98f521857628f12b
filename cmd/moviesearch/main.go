// Package main is the entry point for the moviesearch CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch"
	"github.com/helixml/moviesearch/internal/config"
	"github.com/helixml/moviesearch/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moviesearch",
		Short: "Semantic search over the MovieLens catalogue",
		Long: `moviesearch loads the MovieLens dataset into a relational store, embeds one
vector per movie and ranks movies against free-text queries with the
database's native dot product.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(ingestCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(downloadCmd())
	cmd.AddCommand(modelCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// session bundles what every command that touches the store needs.
type session struct {
	cfg    config.AppConfig
	ctx    context.Context
	logger *slog.Logger
	client *moviesearch.Client
}

// openSession loads configuration, sets up logging with a fresh correlation
// ID and opens the client.
func openSession(envFile string, overrides ...config.AppConfigOption) (*session, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	cfg = cfg.Apply(overrides...)

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger := log.Configure(cfg).Slog()
	ctx := log.WithNewCorrelationID(context.Background())

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, moviesearch.WithLogger(logger))

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(ctx, slog.LevelDebug, "configuration", attrs...)

	client, err := moviesearch.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create moviesearch client: %w", err)
	}

	return &session{cfg: cfg, ctx: ctx, logger: logger, client: client}, nil
}

// Close closes the client, logging rather than returning the error so
// deferred calls keep the command's own error.
func (s *session) Close() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("failed to close moviesearch client", slog.Any("error", err))
	}
}
