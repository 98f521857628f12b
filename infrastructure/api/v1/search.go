// Package v1 implements the version 1 HTTP routes.
package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/infrastructure/api/jsonapi"
	"github.com/helixml/moviesearch/infrastructure/api/middleware"
	"github.com/helixml/moviesearch/infrastructure/api/v1/dto"
)

// DefaultLimit is used when a request carries no limit.
const DefaultLimit = 10

// Searcher answers similarity queries.
type Searcher interface {
	Find(ctx context.Context, query string, limit int) ([]search.Result, error)
	FindByVector(ctx context.Context, vector search.Vector, limit int) ([]search.Result, error)
	Stats(ctx context.Context) (service.Stats, error)
}

// SearchRouter handles search API endpoints.
type SearchRouter struct {
	searcher     Searcher
	defaultLimit int
	logger       *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(searcher Searcher, defaultLimit int, logger *slog.Logger) *SearchRouter {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchRouter{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.Get)
	router.Post("/", r.Post)
	return router
}

// Get handles GET /api/v1/search?q=&limit=.
func (r *SearchRouter) Get(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")
	if query == "" {
		middleware.WriteError(w, req, middleware.BadRequest("query parameter q is required", nil), r.logger)
		return
	}
	limit := r.defaultLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, req, middleware.BadRequest("limit must be an integer", err), r.logger)
			return
		}
		limit = n
	}

	results, err := r.searcher.Find(req.Context(), query, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.writeResults(w, req, results, jsonapi.Meta{"query": query, "limit": limit})
}

// Post handles POST /api/v1/search with a text query or a raw vector.
func (r *SearchRouter) Post(w http.ResponseWriter, req *http.Request) {
	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("invalid JSON body", err), r.logger)
		return
	}
	attrs := body.Data.Attributes

	limit := r.defaultLimit
	if attrs.Limit != nil {
		limit = *attrs.Limit
	}

	var (
		results []search.Result
		err     error
		meta    = jsonapi.Meta{"limit": limit}
	)
	switch {
	case attrs.Query != nil && len(attrs.Vector) > 0:
		middleware.WriteError(w, req, middleware.BadRequest("set either query or vector, not both", nil), r.logger)
		return
	case attrs.Query != nil:
		meta["query"] = *attrs.Query
		results, err = r.searcher.Find(req.Context(), *attrs.Query, limit)
	case len(attrs.Vector) > 0:
		results, err = r.searcher.FindByVector(req.Context(), search.NewVector(attrs.Vector), limit)
	default:
		middleware.WriteError(w, req, middleware.BadRequest("query or vector is required", nil), r.logger)
		return
	}
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.writeResults(w, req, results, meta)
}

// Stats handles GET /api/v1/stats.
func (r *SearchRouter) Stats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.searcher.Stats(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	doc := jsonapi.NewSingleResponse(jsonapi.NewResource(jsonapi.TypeStats, "index", jsonapi.StatsAttributes{
		Movies:    stats.Movies,
		Embedded:  stats.Embedded,
		Dimension: stats.Dimension,
	}))
	if err := jsonapi.Write(w, http.StatusOK, doc); err != nil {
		r.logger.Warn("write response", slog.Any("error", err))
	}
}

func (r *SearchRouter) writeResults(w http.ResponseWriter, req *http.Request, results []search.Result, meta jsonapi.Meta) {
	doc := jsonapi.NewListResponse(jsonapi.MovieResources(results))
	meta["count"] = len(results)
	doc.Meta = meta
	doc.Links = &jsonapi.Links{Self: req.URL.RequestURI()}
	if err := jsonapi.Write(w, http.StatusOK, doc); err != nil {
		r.logger.Warn("write response", slog.Any("error", err))
	}
}
