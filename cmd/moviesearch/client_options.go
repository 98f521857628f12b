package main

import (
	"fmt"

	"github.com/helixml/moviesearch"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/infrastructure/provider"
	"github.com/helixml/moviesearch/internal/config"
)

// clientOptions returns the moviesearch.Option slice derived from AppConfig:
// storage, embedding provider, ingestion and search defaults. Callers
// append entrypoint-specific options before passing the slice to
// moviesearch.New.
func clientOptions(cfg config.AppConfig) ([]moviesearch.Option, error) {
	opts := []moviesearch.Option{
		moviesearch.WithDataDir(cfg.DataDir()),
		moviesearch.WithDBURL(cfg.DBURL()),
		moviesearch.WithModelDir(cfg.ModelDir()),
		moviesearch.WithModelName(cfg.ModelName()),
		moviesearch.WithEmbeddingDimension(cfg.EmbeddingDimension()),
		moviesearch.WithBatchSize(cfg.IngestBatchSize()),
		moviesearch.WithReportInterval(cfg.Reporting().LogTimeInterval()),
		moviesearch.WithSearchLimit(cfg.SearchLimit()),
	}

	embOpts, err := embeddingOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding config: %w", err)
	}
	return append(opts, embOpts...), nil
}

// embeddingOptions returns the options for a remote embedding endpoint when
// one is configured, or an empty slice so the local model is used.
func embeddingOptions(cfg config.AppConfig) ([]moviesearch.Option, error) {
	endpoint := cfg.EmbeddingEndpoint()
	if endpoint == nil || !endpoint.IsConfigured() {
		return nil, nil
	}

	openaiCfg := provider.OpenAIConfig{
		APIKey:        endpoint.APIKey(),
		BaseURL:       endpoint.BaseURL(),
		Model:         endpoint.Model(),
		Dimensions:    cfg.EmbeddingDimension(),
		Timeout:       endpoint.Timeout(),
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		transport, err := provider.NewCachingTransport(cacheDir, nil)
		if err != nil {
			return nil, err
		}
		openaiCfg.Transport = transport
	}

	budget, err := search.NewTokenBudget(endpoint.MaxBatchChars())
	if err != nil {
		return nil, fmt.Errorf("max batch chars: %w", err)
	}

	return []moviesearch.Option{
		moviesearch.WithOpenAIConfig(openaiCfg),
		moviesearch.WithEmbeddingBudget(budget.WithMaxBatchSize(endpoint.MaxBatchSize())),
	}, nil
}
