package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., EMBEDDING_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.moviesearch
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL. It wins over the DB_* options.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/movielens.db
	DBURL string `envconfig:"DB_URL"`

	// DB holds the discrete connection options.
	DB DatabaseEnv `envconfig:"DB"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DatasetURL is the MovieLens zip archive to download.
	// Env: DATASET_URL
	DatasetURL string `envconfig:"DATASET_URL" default:"https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"`

	// DatasetDir is the directory holding movies.csv, ratings.csv and tags.csv.
	// Env: DATASET_DIR
	// Default: {data_dir}/dataset
	DatasetDir string `envconfig:"DATASET_DIR"`

	// IngestBatchSize is the number of rows per INSERT.
	// Env: INGEST_BATCH_SIZE (default: 1000)
	IngestBatchSize int `envconfig:"INGEST_BATCH_SIZE" default:"1000"`

	// EmbeddingEndpoint configures a remote embedding service. When no
	// model is set, the local ONNX model is used.
	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// EmbeddingDimension is the expected vector length; 0 lets the first
	// vector decide.
	// Env: EMBEDDING_DIMENSION (default: 0)
	EmbeddingDimension int `envconfig:"EMBEDDING_DIMENSION" default:"0"`

	// ModelDir is where local ONNX models are stored.
	// Env: MODEL_DIR
	// Default: {data_dir}/models
	ModelDir string `envconfig:"MODEL_DIR"`

	// ModelName is the Hugging Face model downloaded for local embeddings.
	// Env: MODEL_NAME
	ModelName string `envconfig:"MODEL_NAME" default:"sentence-transformers/all-MiniLM-L6-v2"`

	// HTTPCacheDir is the directory for caching HTTP responses to disk.
	// When set, embedding request/response pairs are cached to avoid repeated API calls.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// SearchLimit is the default search result limit.
	// Env: SEARCH_LIMIT (default: 10)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"10"`

	// Reporting configures progress reporting.
	Reporting ReportingEnv `envconfig:"REPORTING"`
}

// DatabaseEnv holds the discrete connection options.
type DatabaseEnv struct {
	// Driver is one of sqlite, postgres, mysql, singlestore.
	// Env: DB_DRIVER
	Driver string `envconfig:"DRIVER"`

	// Env: DB_HOST
	Host string `envconfig:"HOST"`

	// Env: DB_PORT
	Port int `envconfig:"PORT"`

	// Env: DB_USERNAME
	Username string `envconfig:"USERNAME"`

	// Env: DB_PASSWORD
	Password string `envconfig:"PASSWORD"`

	// Database is the schema name, or the file path for sqlite.
	// Env: DB_DATABASE
	Database string `envconfig:"DATABASE"`
}

// EndpointEnv holds environment configuration for an embedding endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier (e.g., text-embedding-3-small).
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: *_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: *_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: *_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// MaxBatchChars is the maximum total characters per embedding batch.
	// Env: *_MAX_BATCH_CHARS (default: 16000)
	MaxBatchChars int `envconfig:"MAX_BATCH_CHARS" default:"16000"`

	// MaxBatchSize is the maximum number of texts per request.
	// Env: *_MAX_BATCH_SIZE (default: 10)
	MaxBatchSize int `envconfig:"MAX_BATCH_SIZE" default:"10"`
}

// ReportingEnv holds environment configuration for reporting.
type ReportingEnv struct {
	// LogTimeInterval is the logging interval in seconds.
	// Env: REPORTING_LOG_TIME_INTERVAL (default: 5)
	LogTimeInterval float64 `envconfig:"LOG_TIME_INTERVAL" default:"5"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace and canonicalises case-insensitive values.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.DataDir = strings.TrimSpace(e.DataDir)
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.DB.Driver = strings.ToLower(strings.TrimSpace(e.DB.Driver))
	e.DB.Host = strings.TrimSpace(e.DB.Host)
	e.LogLevel = strings.ToUpper(strings.TrimSpace(e.LogLevel))
	e.LogFormat = strings.ToLower(strings.TrimSpace(e.LogFormat))
	e.DatasetDir = strings.TrimSpace(e.DatasetDir)
	e.EmbeddingEndpoint.BaseURL = strings.TrimSpace(e.EmbeddingEndpoint.BaseURL)
	e.EmbeddingEndpoint.Model = strings.TrimSpace(e.EmbeddingEndpoint.Model)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.DB.Driver != "" {
		cfg = applyOption(cfg, WithConnectionOptions(e.DB.ToConnectionOptions()))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.DatasetURL != "" {
		cfg = applyOption(cfg, WithDatasetURL(e.DatasetURL))
	}
	if e.DatasetDir != "" {
		cfg = applyOption(cfg, WithDatasetDir(e.DatasetDir))
	}
	cfg = applyOption(cfg, WithIngestBatchSize(e.IngestBatchSize))

	if e.EmbeddingEndpoint.IsConfigured() {
		cfg = applyOption(cfg, WithEmbeddingEndpoint(e.EmbeddingEndpoint.ToEndpoint()))
	}
	cfg = applyOption(cfg, WithEmbeddingDimension(e.EmbeddingDimension))

	if e.ModelDir != "" {
		cfg = applyOption(cfg, WithModelDir(e.ModelDir))
	}
	if e.ModelName != "" {
		cfg = applyOption(cfg, WithModelName(e.ModelName))
	}
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}
	cfg = applyOption(cfg, WithSearchLimit(e.SearchLimit))
	cfg = applyOption(cfg, WithReportingConfig(e.Reporting.ToReportingConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToConnectionOptions converts DatabaseEnv to ConnectionOptions.
func (d DatabaseEnv) ToConnectionOptions() ConnectionOptions {
	return NewConnectionOptions(d.Driver, d.Host, d.Port, d.Username, d.Password, d.Database)
}

// IsConfigured returns true if the endpoint has a model configured.
func (e EndpointEnv) IsConfigured() bool {
	return e.Model != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithModel(e.Model),
		WithTimeout(time.Duration(e.Timeout * float64(time.Second))),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(time.Duration(e.InitialDelay * float64(time.Second))),
		WithBackoffFactor(e.BackoffFactor),
		WithMaxBatchChars(e.MaxBatchChars),
		WithMaxBatchSize(e.MaxBatchSize),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// ToReportingConfig converts ReportingEnv to ReportingConfig.
func (r ReportingEnv) ToReportingConfig() ReportingConfig {
	return NewReportingConfig().
		WithLogTimeInterval(time.Duration(r.LogTimeInterval * float64(time.Second)))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
