// Package moviesearch embeds the MovieLens catalogue and answers semantic
// movie queries with the database's native dot product.
//
// Basic usage:
//
//	client, err := moviesearch.New(
//	    moviesearch.WithSQLite(".moviesearch/movielens.db"),
//	    moviesearch.WithModelDir(".moviesearch/models"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Load, aggregate and embed the dataset
//	source, err := dataset.Locate("ml-latest-small")
//	summary, err := client.Ingest(ctx, source)
//
//	// Rank movies against a query
//	results, err := client.Find(ctx, "pixar movies about toys", 5)
//	for _, r := range results {
//	    fmt.Println(r.MovieID(), r.Title(), r.Score())
//	}
package moviesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/domain/search"
	domainservice "github.com/helixml/moviesearch/domain/service"
	"github.com/helixml/moviesearch/infrastructure/persistence"
	"github.com/helixml/moviesearch/infrastructure/provider"
	vectorstore "github.com/helixml/moviesearch/infrastructure/search"
	"github.com/helixml/moviesearch/internal/config"
	"github.com/helixml/moviesearch/internal/database"
)

// ErrClientClosed is returned by every Client method after Close.
var ErrClientClosed = service.ErrClientClosed

// Client is the main entry point for the moviesearch library.
//
// The services are exposed as struct fields for callers that need more than
// the convenience methods:
//
//	client.Ingestion.Index(ctx, docs)
//	client.Search.FindByVector(ctx, vector, 10)
type Client struct {
	Ingestion *service.Ingestion
	Search    *service.Search

	db        database.Database
	vectors   search.VectorStore
	embedding *domainservice.EmbeddingService

	hugotEmbedding *provider.HugotEmbedding
	closers        []io.Closer

	logger      *slog.Logger
	dataDir     string
	searchLimit int
	closed      atomic.Bool
}

// New opens the database, migrates the schema and wires the embedding
// provider, the ingestion pipeline and the search service.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	// Fall back to the local model when no provider is configured.
	var hugotEmbedding *provider.HugotEmbedding
	if cfg.embedder == nil {
		modelDir := cfg.modelDir
		if modelDir == "" {
			modelDir = filepath.Join(dataDir, config.DefaultModelSubdir)
		}
		hugotEmbedding = provider.NewHugotEmbedding(modelDir, cfg.modelName)
		if !hugotEmbedding.Available() {
			return nil, service.Wrapf(
				fmt.Errorf("no embedding model found in %s", modelDir),
				service.CodeEmbeddingModel,
				"run 'moviesearch model' or configure EMBEDDING_ENDPOINT_BASE_URL",
			)
		}
		cfg.embedder = hugotEmbedding
		logger.Info("local embedding provider enabled",
			slog.String("model_dir", modelDir),
			slog.String("model", cfg.modelName),
		)
	}

	dbURL := cfg.dbURL
	if dbURL == "" {
		dbURL = "sqlite:///" + filepath.Join(dataDir, config.DefaultDatabaseFile)
	}

	ctx := context.Background()
	db, err := database.NewDatabaseWithLogger(ctx, dbURL, logger)
	if err != nil {
		return nil, service.Wrapf(err, service.CodeStoreConnect, "open database %s", config.MaskURL(dbURL))
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(service.Wrapf(err, service.CodeStoreConnect, "auto migrate"), errClose)
	}

	vectors, err := vectorstore.NewVectorStore(db, cfg.dimension, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(service.Wrapf(err, service.CodeStoreConnect, "vector store"), errClose)
	}

	// Reading the index learns the dimension of a populated store.
	if _, err := vectors.Count(ctx); err != nil {
		logger.Debug("vector index not readable yet", slog.String("error", err.Error()))
	}

	embedding, err := domainservice.NewEmbedding(cfg.embedder, cfg.budget, cfg.dimension)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create embedding service: %w", err), errClose)
	}

	movies := persistence.NewMovieStore(db).WithBatchSize(cfg.batchSize)
	stores := service.IngestionStores{
		Schema:    persistence.NewSchema(db),
		Movies:    movies,
		Ratings:   persistence.NewRatingStore(db).WithBatchSize(cfg.batchSize),
		Tags:      persistence.NewTagStore(db).WithBatchSize(cfg.batchSize),
		Documents: persistence.NewDocumentStore(db),
		Vectors:   vectors,
	}

	ingestOpts := []service.IngestionOption{
		service.WithBatchSize(cfg.batchSize),
		service.WithReportInterval(cfg.reportInterval),
	}
	for _, r := range cfg.reporters {
		ingestOpts = append(ingestOpts, service.WithReporter(r))
	}
	ingestion, err := service.NewIngestion(stores, embedding, logger, ingestOpts...)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create ingestion: %w", err), errClose)
	}

	searchSvc, err := service.NewSearch(embedding, vectors, movies, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create search: %w", err), errClose)
	}

	return &Client{
		Ingestion:      ingestion,
		Search:         searchSvc,
		db:             db,
		vectors:        vectors,
		embedding:      embedding,
		hugotEmbedding: hugotEmbedding,
		closers:        cfg.closers,
		logger:         logger,
		dataDir:        dataDir,
		searchLimit:    cfg.searchLimit,
	}, nil
}

// Ingest rebuilds every table from source and embeds one vector per movie.
func (c *Client) Ingest(ctx context.Context, source movie.Source) (service.IngestSummary, error) {
	if c.closed.Load() {
		return service.IngestSummary{}, ErrClientClosed
	}
	return c.Ingestion.Run(ctx, source)
}

// Find ranks movies against query. A limit of 0 uses the configured default.
func (c *Client) Find(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if limit == 0 {
		limit = c.searchLimit
	}
	return c.Search.Find(ctx, query, limit)
}

// FindByVector ranks movies against a caller-supplied query vector.
func (c *Client) FindByVector(ctx context.Context, vector search.Vector, limit int) ([]search.Result, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if limit == 0 {
		limit = c.searchLimit
	}
	return c.Search.FindByVector(ctx, vector, limit)
}

// Stats reports how many movies are loaded and embedded.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	if c.closed.Load() {
		return service.Stats{}, ErrClientClosed
	}
	return c.Search.Stats(ctx)
}

// Vectors returns the vector store, which also serves single-movie lookups.
func (c *Client) Vectors() search.VectorStore {
	return c.vectors
}

// Dimension returns the embedding length, or the stored vector length of an
// existing index, or 0 before anything is embedded.
func (c *Client) Dimension() int {
	if d := c.embedding.Dimension(); d > 0 {
		return d
	}
	return c.vectors.Dimension()
}

// SearchLimit returns the default result count.
func (c *Client) SearchLimit() int {
	return c.searchLimit
}

// DataDir returns the prepared data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// Close releases the embedding provider, registered closers and the
// database.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	if c.hugotEmbedding != nil {
		if err := c.hugotEmbedding.Close(); err != nil {
			c.logger.Error("failed to close hugot embedding", slog.Any("error", err))
		}
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("moviesearch client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
