package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Exposes the search_movies, index_stats and get_movie tools so AI assistants
can query the embedded catalogue. Logs go to stderr; stdout carries the
protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	s, err := openSession(envFile)
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", s.cfg.DataDir()),
	)

	server := mcp.NewServer(s.client, s.client.Vectors(), s.client.SearchLimit(), version, s.logger)
	return server.ServeStdio()
}
