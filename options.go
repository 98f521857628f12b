package moviesearch

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/infrastructure/provider"
	"github.com/helixml/moviesearch/infrastructure/tracking"
	"github.com/helixml/moviesearch/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL          string
	dataDir        string
	modelDir       string
	modelName      string
	embedder       search.Embedder
	budget         search.TokenBudget
	dimension      int
	batchSize      int
	reportInterval time.Duration
	reporters      []tracking.Reporter
	searchLimit    int
	logger         *slog.Logger
	closers        []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:        config.DefaultDataDir(),
		modelName:      config.DefaultModelName,
		budget:         search.DefaultTokenBudget(),
		batchSize:      service.DefaultBatchSize,
		reportInterval: service.DefaultReportInterval,
		searchLimit:    config.DefaultSearchLimit,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDBURL sets the database URL. Supported schemes are sqlite:///,
// postgres:// and singlestore://. Plain mysql:// is rejected because MySQL
// cannot rank vectors.
func WithDBURL(u string) Option {
	return func(c *clientConfig) {
		c.dbURL = u
	}
}

// WithSQLite stores everything in the SQLite file at path.
func WithSQLite(path string) Option {
	return WithDBURL("sqlite:///" + path)
}

// WithDataDir sets the directory for the default database file and models.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithModelDir sets the directory where local model files are stored.
// Defaults to {dataDir}/models if not specified.
func WithModelDir(dir string) Option {
	return func(c *clientConfig) {
		c.modelDir = dir
	}
}

// WithModelName selects which downloaded model the local provider loads.
func WithModelName(name string) Option {
	return func(c *clientConfig) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithOpenAIConfig embeds through an OpenAI-compatible endpoint instead of
// the local model.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIEmbedding(cfg)
		c.embedder = p
		c.closers = append(c.closers, p)
		if cfg.Dimensions > 0 && c.dimension == 0 {
			c.dimension = cfg.Dimensions
		}
	}
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithEmbeddingBudget sets the truncation and batching budget for embedding
// requests.
func WithEmbeddingBudget(b search.TokenBudget) Option {
	return func(c *clientConfig) {
		c.budget = b
	}
}

// WithEmbeddingDimension fixes the vector length. Zero lets the first
// embedded vector, or the stored table, decide.
func WithEmbeddingDimension(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.dimension = n
		}
	}
}

// WithBatchSize sets the rows per insert batch. Values <= 0 are ignored.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithReportInterval sets the minimum time between progress log lines for
// each ingestion stage.
func WithReportInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		c.reportInterval = d
	}
}

// WithReporter adds a reporter that sees every ingestion status change.
func WithReporter(r tracking.Reporter) Option {
	return func(c *clientConfig) {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
}

// WithSearchLimit sets the result count used when a caller passes no limit.
func WithSearchLimit(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(cl io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, cl)
	}
}
