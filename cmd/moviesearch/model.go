package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/moviesearch/infrastructure/provider"
	"github.com/helixml/moviesearch/internal/config"
	"github.com/helixml/moviesearch/internal/log"
)

func modelCmd() *cobra.Command {
	var (
		envFile string
		dest    string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Download the local sentence-transformer model",
		Long: `Download the ONNX sentence-transformer used for local embeddings from the
Hugging Face hub. An existing copy is reused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(envFile, dest, name)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory (default: MODEL_DIR)")
	cmd.Flags().StringVar(&name, "name", "", "Hugging Face model name (default: MODEL_NAME)")

	return cmd
}

func runModel(envFile, dest, name string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	var overrides []config.AppConfigOption
	if dest != "" {
		overrides = append(overrides, config.WithModelDir(dest))
	}
	if name != "" {
		overrides = append(overrides, config.WithModelName(name))
	}
	cfg = cfg.Apply(overrides...)

	logger := log.Configure(cfg).Slog()
	logger.Info("downloading model",
		slog.String("model", cfg.ModelName()),
		slog.String("dest", cfg.ModelDir()),
	)

	path, err := provider.DownloadModel(cfg.ModelName(), cfg.ModelDir())
	if err != nil {
		return err
	}

	fmt.Printf("Model ready in %s\n", path)
	return nil
}
