package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch/infrastructure/dataset"
	"github.com/helixml/moviesearch/internal/config"
)

func ingestCmd() *cobra.Command {
	var (
		envFile    string
		datasetDir string
		download   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the MovieLens dataset and embed every movie",
		Long: `Drop and recreate the movies, ratings, tags and vector tables, load the
MovieLens CSV files, aggregate each movie's tags and store one embedding per
movie.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  DATA_DIR                     Data directory (default: ~/.moviesearch)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/movielens.db)
  DB_DRIVER, DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD, DB_DATABASE
                               Discrete connection options, used when DB_URL is unset
  DATASET_URL                  MovieLens archive URL
  DATASET_DIR                  Directory holding movies.csv, ratings.csv, tags.csv
  INGEST_BATCH_SIZE            Rows per insert statement (default: 1000)
  EMBEDDING_DIMENSION          Expected vector length (default: first vector decides)
  MODEL_DIR, MODEL_NAME        Local sentence-transformer location
  EMBEDDING_ENDPOINT_*         Remote OpenAI-compatible embedding service
    BASE_URL, MODEL, API_KEY, TIMEOUT, MAX_RETRIES, INITIAL_DELAY, BACKOFF_FACTOR
  HTTP_CACHE_DIR               Cache remote embedding responses on disk
  REPORTING_LOG_TIME_INTERVAL  Minimum time between progress lines (default: 5s)
  LOG_LEVEL, LOG_FORMAT        Logging (default: INFO, pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(envFile, datasetDir, download)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "", "Directory holding the MovieLens CSV files")
	cmd.Flags().BoolVar(&download, "download", false, "Download the dataset first if it is not present")

	return cmd
}

func runIngest(envFile, datasetDir string, download bool) error {
	var overrides []config.AppConfigOption
	if datasetDir != "" {
		overrides = append(overrides, config.WithDatasetDir(datasetDir))
	}

	s, err := openSession(envFile, overrides...)
	if err != nil {
		return err
	}
	defer s.Close()

	var source dataset.CSVSource
	if download {
		d := dataset.NewDownloader(dataset.WithLogger(s.logger))
		source, err = d.Fetch(s.ctx, s.cfg.DatasetURL(), s.cfg.DatasetDir())
	} else {
		source, err = dataset.Locate(s.cfg.DatasetDir())
	}
	if err != nil {
		return fmt.Errorf("dataset: %w (run with --download or 'moviesearch download')", err)
	}

	s.logger.InfoContext(s.ctx, "starting ingestion",
		slog.String("dataset_dir", source.Dir()),
		slog.String("version", version),
	)

	summary, err := s.client.Ingest(s.ctx, source)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("Ingested %d movies, %d ratings, %d tags; embedded %d documents in %s\n",
		summary.Movies, summary.Ratings, summary.Tags, summary.Documents, summary.Elapsed.Round(time.Millisecond))
	return nil
}
