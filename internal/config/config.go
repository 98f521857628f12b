// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultLogLevel              = "INFO"
	DefaultSearchLimit           = 10
	DefaultIngestBatchSize       = 1000
	DefaultDatasetURL            = "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"
	DefaultDatasetSubdir         = "dataset"
	DefaultModelSubdir           = "models"
	DefaultModelName             = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultEndpointTimeout       = 60 * time.Second
	DefaultEndpointMaxRetries    = 5
	DefaultEndpointInitialDelay  = 2 * time.Second
	DefaultEndpointBackoffFactor = 2.0
	DefaultEndpointMaxBatchChars = 16000
	DefaultEndpointMaxBatchSize  = 10
	DefaultReportingInterval     = 5 * time.Second
	DefaultDatabaseFile          = "movielens.db"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// ReportingConfig configures progress reporting.
type ReportingConfig struct {
	logTimeInterval time.Duration
}

// NewReportingConfig creates a new ReportingConfig with defaults.
func NewReportingConfig() ReportingConfig {
	return ReportingConfig{
		logTimeInterval: DefaultReportingInterval,
	}
}

// LogTimeInterval returns the time interval for logging progress.
func (r ReportingConfig) LogTimeInterval() time.Duration {
	return r.logTimeInterval
}

// WithLogTimeInterval returns a new config with the specified interval.
func (r ReportingConfig) WithLogTimeInterval(d time.Duration) ReportingConfig {
	r.logTimeInterval = d
	return r
}

// Endpoint configures a remote OpenAI-compatible embedding service.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	maxBatchChars int
	maxBatchSize  int
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		timeout:       DefaultEndpointTimeout,
		maxRetries:    DefaultEndpointMaxRetries,
		initialDelay:  DefaultEndpointInitialDelay,
		backoffFactor: DefaultEndpointBackoffFactor,
		maxBatchChars: DefaultEndpointMaxBatchChars,
		maxBatchSize:  DefaultEndpointMaxBatchSize,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// MaxBatchChars returns the maximum total characters per embedding batch.
func (e Endpoint) MaxBatchChars() int { return e.maxBatchChars }

// MaxBatchSize returns the maximum number of texts per embedding request.
func (e Endpoint) MaxBatchSize() int { return e.maxBatchSize }

// IsConfigured returns true if the endpoint has required configuration.
func (e Endpoint) IsConfigured() bool {
	return e.model != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(u string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = u }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// WithMaxBatchChars sets the maximum total characters per embedding batch.
func WithMaxBatchChars(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.maxBatchChars = n
		}
	}
}

// WithMaxBatchSize sets the maximum number of texts per request.
func WithMaxBatchSize(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.maxBatchSize = n
		}
	}
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Database drivers accepted by the discrete connection options.
const (
	DriverSQLite      = "sqlite"
	DriverPostgres    = "postgres"
	DriverMySQL       = "mysql"
	DriverSingleStore = "singlestore"
)

// ConnectionOptions holds the discrete database connection settings used
// when no DB_URL is given.
type ConnectionOptions struct {
	driver   string
	host     string
	port     int
	username string
	password string
	database string
}

// NewConnectionOptions creates ConnectionOptions.
func NewConnectionOptions(driver, host string, port int, username, password, database string) ConnectionOptions {
	return ConnectionOptions{
		driver:   strings.ToLower(strings.TrimSpace(driver)),
		host:     host,
		port:     port,
		username: username,
		password: password,
		database: database,
	}
}

// Driver returns the database driver name.
func (o ConnectionOptions) Driver() string { return o.driver }

// Host returns the database host.
func (o ConnectionOptions) Host() string { return o.host }

// Port returns the database port.
func (o ConnectionOptions) Port() int { return o.port }

// Username returns the database user.
func (o ConnectionOptions) Username() string { return o.username }

// Database returns the database (or SQLite file) name.
func (o ConnectionOptions) Database() string { return o.database }

// IsConfigured reports whether enough options are set to build a URL.
func (o ConnectionOptions) IsConfigured() bool {
	if o.driver == DriverSQLite {
		return o.database != ""
	}
	return o.driver != "" && o.host != ""
}

// URL builds a connection URL understood by the database package.
func (o ConnectionOptions) URL() (string, error) {
	switch o.driver {
	case DriverSQLite:
		if o.database == "" {
			return "", fmt.Errorf("sqlite connection requires a database path")
		}
		return "sqlite:///" + o.database, nil
	case DriverPostgres, "postgresql", DriverMySQL, DriverSingleStore:
		if o.host == "" {
			return "", fmt.Errorf("%s connection requires a host", o.driver)
		}
		u := url.URL{
			Scheme: o.driver,
			Host:   o.host,
			Path:   "/" + o.database,
		}
		if o.port > 0 {
			u.Host = net.JoinHostPort(o.host, strconv.Itoa(o.port))
		}
		if o.username != "" {
			u.User = url.UserPassword(o.username, o.password)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", o.driver)
	}
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	dataDir            string
	dbURL              string
	connection         ConnectionOptions
	logLevel           string
	logFormat          LogFormat
	datasetURL         string
	datasetDir         string
	ingestBatchSize    int
	embeddingEndpoint  *Endpoint
	embeddingDimension int
	modelDir           string
	modelName          string
	httpCacheDir       string
	searchLimit        int
	reporting          ReportingConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moviesearch"
	}
	return filepath.Join(home, ".moviesearch")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:            DefaultHost,
		port:            DefaultPort,
		dataDir:         DefaultDataDir(),
		logLevel:        DefaultLogLevel,
		logFormat:       LogFormatPretty,
		datasetURL:      DefaultDatasetURL,
		ingestBatchSize: DefaultIngestBatchSize,
		modelName:       DefaultModelName,
		searchLimit:     DefaultSearchLimit,
		reporting:       NewReportingConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL. An explicit DB_URL wins over
// the discrete connection options; with neither set, a SQLite file in the
// data directory is used.
func (c AppConfig) DBURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	if c.connection.IsConfigured() {
		if u, err := c.connection.URL(); err == nil {
			return u
		}
	}
	return "sqlite:///" + filepath.Join(c.dataDir, DefaultDatabaseFile)
}

// Connection returns the discrete connection options.
func (c AppConfig) Connection() ConnectionOptions { return c.connection }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// DatasetURL returns the MovieLens archive URL.
func (c AppConfig) DatasetURL() string { return c.datasetURL }

// DatasetDir returns the directory holding the unpacked CSV files.
func (c AppConfig) DatasetDir() string {
	if c.datasetDir != "" {
		return c.datasetDir
	}
	return filepath.Join(c.dataDir, DefaultDatasetSubdir)
}

// IngestBatchSize returns the number of rows inserted per statement.
func (c AppConfig) IngestBatchSize() int { return c.ingestBatchSize }

// EmbeddingEndpoint returns the embedding endpoint config, or nil when the
// local model is used.
func (c AppConfig) EmbeddingEndpoint() *Endpoint { return c.embeddingEndpoint }

// EmbeddingDimension returns the configured vector length; 0 means the
// first embedded vector decides.
func (c AppConfig) EmbeddingDimension() int { return c.embeddingDimension }

// ModelDir returns the directory for local ONNX models.
func (c AppConfig) ModelDir() string {
	if c.modelDir != "" {
		return c.modelDir
	}
	return filepath.Join(c.dataDir, DefaultModelSubdir)
}

// ModelName returns the Hugging Face model used for local embeddings.
func (c AppConfig) ModelName() string { return c.modelName }

// HTTPCacheDir returns the directory for caching embedding HTTP responses.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// SearchLimit returns the default search result limit.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// Reporting returns the reporting config.
func (c AppConfig) Reporting() ReportingConfig { return c.reporting }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.dataDir = dir }
}

// WithDBURL sets the database URL.
func WithDBURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = u }
}

// WithConnectionOptions sets the discrete connection options.
func WithConnectionOptions(o ConnectionOptions) AppConfigOption {
	return func(c *AppConfig) { c.connection = o }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithDatasetURL sets the MovieLens archive URL.
func WithDatasetURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.datasetURL = u }
}

// WithDatasetDir sets the CSV directory.
func WithDatasetDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.datasetDir = dir }
}

// WithIngestBatchSize sets the insert batch size.
func WithIngestBatchSize(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.ingestBatchSize = n
		}
	}
}

// WithEmbeddingEndpoint sets the embedding endpoint.
func WithEmbeddingEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.embeddingEndpoint = &e }
}

// WithEmbeddingDimension sets the expected vector length.
func WithEmbeddingDimension(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n >= 0 {
			c.embeddingDimension = n
		}
	}
}

// WithModelDir sets the local model directory.
func WithModelDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.modelDir = dir }
}

// WithModelName sets the local model name.
func WithModelName(name string) AppConfigOption {
	return func(c *AppConfig) { c.modelName = name }
}

// WithHTTPCacheDir sets the HTTP response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithSearchLimit sets the default search result limit.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithReportingConfig sets the reporting config.
func WithReportingConfig(r ReportingConfig) AppConfigOption {
	return func(c *AppConfig) { c.reporting = r }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Credentials are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", MaskURL(c.DBURL())),
		slog.String("dataset_dir", c.DatasetDir()),
		slog.Int("ingest_batch_size", c.ingestBatchSize),
		slog.String("embedding_base_url", c.endpointBaseURL()),
		slog.String("embedding_model", c.embeddingModel()),
		slog.Int("embedding_dimension", c.embeddingDimension),
		slog.Int("search_limit", c.searchLimit),
	}
}

// MaskURL hides the password of a connection URL.
func MaskURL(raw string) string {
	if strings.HasPrefix(raw, "sqlite:") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

func (c AppConfig) endpointBaseURL() string {
	if c.embeddingEndpoint == nil {
		return "(not configured)"
	}
	return c.embeddingEndpoint.BaseURL()
}

func (c AppConfig) embeddingModel() string {
	if c.embeddingEndpoint == nil {
		return c.modelName + " (local)"
	}
	return c.embeddingEndpoint.Model()
}
