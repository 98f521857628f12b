package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/domain/search"
	domainservice "github.com/helixml/moviesearch/domain/service"
	"github.com/helixml/moviesearch/domain/task"
	"github.com/helixml/moviesearch/infrastructure/tracking"
)

// DefaultBatchSize is the number of rows written per insert and the number of
// documents embedded per progress step.
const DefaultBatchSize = 500

// DefaultReportInterval is the minimum time between progress log lines per stage.
const DefaultReportInterval = 5 * time.Second

// Schema drops and recreates the dataset tables.
type Schema interface {
	Reset(ctx context.Context) error
}

// IngestionStores groups the stores an ingestion run writes to.
type IngestionStores struct {
	Schema    Schema
	Movies    movie.MovieStore
	Ratings   movie.RatingStore
	Tags      movie.TagStore
	Documents movie.DocumentStore
	Vectors   search.VectorStore
}

func (s IngestionStores) validate() error {
	switch {
	case s.Schema == nil:
		return errors.New("nil schema")
	case s.Movies == nil:
		return errors.New("nil movie store")
	case s.Ratings == nil:
		return errors.New("nil rating store")
	case s.Tags == nil:
		return errors.New("nil tag store")
	case s.Documents == nil:
		return errors.New("nil document store")
	case s.Vectors == nil:
		return errors.New("nil vector store")
	}
	return nil
}

// IngestSummary counts what a run loaded and embedded.
type IngestSummary struct {
	Movies    int
	Ratings   int
	Tags      int
	Documents int
	Elapsed   time.Duration
}

// IngestionOption configures an Ingestion.
type IngestionOption func(*Ingestion)

// WithBatchSize sets the rows per batch. Values <= 0 keep the default.
func WithBatchSize(n int) IngestionOption {
	return func(i *Ingestion) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithReportInterval sets the minimum time between progress log lines.
func WithReportInterval(d time.Duration) IngestionOption {
	return func(i *Ingestion) {
		i.reportInterval = d
	}
}

// WithReporter adds a reporter that receives every status change unthrottled.
func WithReporter(r tracking.Reporter) IngestionOption {
	return func(i *Ingestion) {
		if r != nil {
			i.reporters = append(i.reporters, r)
		}
	}
}

// Ingestion loads the dataset, aggregates tags and persists one embedding per
// movie. The first failure aborts the run.
type Ingestion struct {
	stores         IngestionStores
	embedding      domainservice.Embedding
	logger         *slog.Logger
	batchSize      int
	reportInterval time.Duration
	reporters      []tracking.Reporter
}

// NewIngestion creates a new Ingestion.
func NewIngestion(stores IngestionStores, embedding domainservice.Embedding, logger *slog.Logger, opts ...IngestionOption) (*Ingestion, error) {
	if err := stores.validate(); err != nil {
		return nil, fmt.Errorf("NewIngestion: %w", err)
	}
	if embedding == nil {
		return nil, errors.New("NewIngestion: nil embedding")
	}
	if logger == nil {
		logger = slog.Default()
	}
	i := &Ingestion{
		stores:         stores,
		embedding:      embedding,
		logger:         logger,
		batchSize:      DefaultBatchSize,
		reportInterval: DefaultReportInterval,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// BatchSize returns the configured batch size.
func (i *Ingestion) BatchSize() int { return i.batchSize }

// Run performs a full ingestion from source: reset, load, aggregate, embed.
func (i *Ingestion) Run(ctx context.Context, source movie.Source) (summary IngestSummary, err error) {
	if source == nil {
		return IngestSummary{}, errors.New("ingest: nil source")
	}
	start := time.Now()

	root, closeTracking := i.tracker(task.OperationIngest)
	defer func() {
		if err != nil {
			root.Fail(ctx, err)
		} else {
			root.Complete(ctx)
		}
		if cerr := closeTracking(); cerr != nil {
			i.logger.Warn("flush progress", slog.String("error", cerr.Error()))
		}
	}()
	root.Start(ctx)

	if err := i.reset(ctx, root); err != nil {
		return summary, err
	}

	summary.Movies, err = load(ctx, i, root, task.OperationLoadMovies, source.Movies, i.stores.Movies.SaveAll)
	if err != nil {
		return summary, err
	}
	summary.Ratings, err = load(ctx, i, root, task.OperationLoadRatings, source.Ratings, i.stores.Ratings.SaveAll)
	if err != nil {
		return summary, err
	}
	summary.Tags, err = load(ctx, i, root, task.OperationLoadTags, source.Tags, i.stores.Tags.SaveAll)
	if err != nil {
		return summary, err
	}

	docs, err := i.aggregate(ctx, root)
	if err != nil {
		return summary, err
	}

	summary.Documents, err = i.index(ctx, root.Child(ctx, task.OperationEmbedDocuments), docs)
	if err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(start)
	i.logger.Info("ingestion complete",
		slog.Int("movies", summary.Movies),
		slog.Int("ratings", summary.Ratings),
		slog.Int("tags", summary.Tags),
		slog.Int("documents", summary.Documents),
		slog.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// Index embeds docs in order and persists one vector entry per document.
// The vector table is not reset; duplicate movies fail the write.
func (i *Ingestion) Index(ctx context.Context, docs []movie.Document) (int, error) {
	tr, closeTracking := i.tracker(task.OperationEmbedDocuments)
	defer func() {
		if cerr := closeTracking(); cerr != nil {
			i.logger.Warn("flush progress", slog.String("error", cerr.Error()))
		}
	}()
	tr.Start(ctx)
	return i.index(ctx, tr, docs)
}

func (i *Ingestion) tracker(op task.Operation) (*tracking.Tracker, func() error) {
	cooldown := tracking.NewCooldown(tracking.NewLoggingReporter(i.logger), i.reportInterval)
	reporters := append([]tracking.Reporter{cooldown}, i.reporters...)
	return tracking.NewTracker(op, i.logger, reporters...), cooldown.Close
}

func (i *Ingestion) reset(ctx context.Context, root *tracking.Tracker) error {
	tr := root.Child(ctx, task.OperationReset)
	if err := i.stores.Schema.Reset(ctx); err != nil {
		err = Wrapf(err, CodeStoreConnect, "reset dataset tables")
		tr.Fail(ctx, err)
		return err
	}
	if err := i.stores.Vectors.Reset(ctx); err != nil {
		err = Wrapf(err, CodeStoreConnect, "reset vector table")
		tr.Fail(ctx, err)
		return err
	}
	tr.Complete(ctx)
	return nil
}

// load streams one dataset file into its store. Store failures carry
// CodeStoreWrite; anything else the source returns is a dataset failure.
func load[T any](
	ctx context.Context,
	i *Ingestion,
	root *tracking.Tracker,
	op task.Operation,
	read func(context.Context, int, func([]T) error) error,
	save func(context.Context, []T) error,
) (int, error) {
	tr := root.Child(ctx, op)
	total := 0
	err := read(ctx, i.batchSize, func(batch []T) error {
		if err := save(ctx, batch); err != nil {
			return Wrapf(err, CodeStoreWrite, "%s: insert rows %d-%d", op.Stage(), total+1, total+len(batch))
		}
		total += len(batch)
		tr.SetCurrent(ctx, total, "")
		return nil
	})
	if err != nil {
		if CodeOf(err) == "" {
			err = Wrapf(err, CodeDatasetRead, "%s", op.Stage())
		}
		tr.Fail(ctx, err)
		return total, err
	}
	tr.Complete(ctx)
	return total, nil
}

func (i *Ingestion) aggregate(ctx context.Context, root *tracking.Tracker) ([]movie.Document, error) {
	tr := root.Child(ctx, task.OperationAggregateTags)
	docs, err := i.stores.Documents.Documents(ctx)
	if err != nil {
		err = Wrapf(err, CodeStoreConnect, "aggregate tags")
		tr.Fail(ctx, err)
		return nil, err
	}
	tr.SetTotal(ctx, len(docs))
	tr.Complete(ctx)
	return docs, nil
}

func (i *Ingestion) index(ctx context.Context, tr *tracking.Tracker, docs []movie.Document) (int, error) {
	tr.SetTotal(ctx, len(docs))
	done := 0
	for start := 0; start < len(docs); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			tr.Fail(ctx, err)
			return done, err
		}
		end := min(start+i.batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for j, doc := range batch {
			texts[j] = doc.Text()
		}
		vectors, err := i.embedding.EncodeAll(ctx, texts)
		if err != nil {
			err = Wrapf(err, CodeEmbeddingModel, "embed movies %d-%d", batch[0].MovieID(), batch[len(batch)-1].MovieID())
			tr.Fail(ctx, err)
			return done, err
		}
		if len(vectors) != len(batch) {
			err = Wrapf(fmt.Errorf("got %d vectors for %d documents", len(vectors), len(batch)), CodeEmbeddingModel, "embed movies")
			tr.Fail(ctx, err)
			return done, err
		}

		entries := make([]search.Entry, len(batch))
		for j, doc := range batch {
			entries[j] = search.NewEntry(doc.MovieID(), doc.Title(), doc.Genres(), doc.AllTags(), vectors[j])
		}
		if err := i.stores.Vectors.SaveAll(ctx, entries); err != nil {
			err = Wrapf(err, CodeStoreWrite, "save vectors for movies %d-%d", batch[0].MovieID(), batch[len(batch)-1].MovieID())
			tr.Fail(ctx, err)
			return done, err
		}
		done += len(batch)
		tr.SetCurrent(ctx, done, "")
	}
	tr.Complete(ctx)
	return done, nil
}
