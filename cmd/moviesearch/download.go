package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch/infrastructure/dataset"
	"github.com/helixml/moviesearch/internal/config"
	"github.com/helixml/moviesearch/internal/log"
)

func downloadCmd() *cobra.Command {
	var (
		envFile string
		dest    string
		url     string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download and unzip the MovieLens dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(envFile, dest, url)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory (default: DATASET_DIR)")
	cmd.Flags().StringVar(&url, "url", "", "Archive URL (default: DATASET_URL)")

	return cmd
}

func runDownload(envFile, dest, url string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	var overrides []config.AppConfigOption
	if dest != "" {
		overrides = append(overrides, config.WithDatasetDir(dest))
	}
	if url != "" {
		overrides = append(overrides, config.WithDatasetURL(url))
	}
	cfg = cfg.Apply(overrides...)

	logger := log.Configure(cfg).Slog()
	ctx := log.WithNewCorrelationID(context.Background())

	source, err := dataset.NewDownloader(dataset.WithLogger(logger)).Fetch(ctx, cfg.DatasetURL(), cfg.DatasetDir())
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}

	fmt.Printf("Dataset ready in %s\n", source.Dir())
	return nil
}
