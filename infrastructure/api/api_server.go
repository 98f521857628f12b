package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	v1 "github.com/helixml/moviesearch/infrastructure/api/v1"
	mcpinternal "github.com/helixml/moviesearch/internal/mcp"
)

// APIServer exposes movie search over HTTP: the v1 JSON:API routes, a
// health probe, API docs and the streamable MCP endpoint.
type APIServer struct {
	searcher     v1.Searcher
	movies       mcpinternal.MovieLookup
	defaultLimit int
	version      string
	logger       *slog.Logger
	server       *Server
}

// NewAPIServer creates a new APIServer. movies may be nil.
func NewAPIServer(searcher v1.Searcher, movies mcpinternal.MovieLookup, defaultLimit int, version string, logger *slog.Logger, opts ...ServerOption) *APIServer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &APIServer{
		searcher:     searcher,
		movies:       movies,
		defaultLimit: defaultLimit,
		version:      version,
		logger:       logger,
		server:       NewServer("", logger, opts...),
	}
	a.mountRoutes(a.server.Router())
	return a
}

func (a *APIServer) mountRoutes(router chi.Router) {
	searchRouter := v1.NewSearchRouter(a.searcher, a.defaultLimit, a.logger)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Mount("/search", searchRouter.Routes())
		r.Get("/stats", searchRouter.Stats)
	})

	router.Mount("/docs", NewDocsRouter("/docs/openapi.json").Routes())

	mcpSrv := mcpinternal.NewServer(a.searcher, a.movies, a.defaultLimit, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// Handler returns the routed handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	return a.server.Router()
}

// ListenAndServe serves on addr until Shutdown.
func (a *APIServer) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return a.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (a *APIServer) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
