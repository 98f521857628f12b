// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/domain/repository"
	"github.com/helixml/moviesearch/domain/search"
)

// DefaultLimit is the result count used when a caller omits one.
const DefaultLimit = 10

// Searcher provides movie similarity search for MCP tools.
type Searcher interface {
	Find(ctx context.Context, query string, limit int) ([]search.Result, error)
	Stats(ctx context.Context) (service.Stats, error)
}

// MovieLookup reads stored movie entries.
type MovieLookup interface {
	Find(ctx context.Context, options ...repository.Option) ([]search.Entry, error)
}

// Server wraps the MCP server with the movie search tools.
type Server struct {
	mcpServer    *server.MCPServer
	searcher     Searcher
	movies       MovieLookup
	defaultLimit int
	logger       *slog.Logger
}

// NewServer creates a new MCP server. movies may be nil, which disables the
// get_movie tool.
func NewServer(searcher Searcher, movies MovieLookup, defaultLimit int, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	s := &Server{
		searcher:     searcher,
		movies:       movies,
		defaultLimit: defaultLimit,
		logger:       logger,
	}

	mcpServer := server.NewMCPServer(
		"moviesearch",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search_movies",
		mcp.WithDescription("Find MovieLens movies whose title, genres and tags are most similar to a free-text query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What the movie is like, e.g. \"pixar toys adventure\""),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Number of results to return (default: %d)", s.defaultLimit)),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearch)

	statsTool := mcp.NewTool("index_stats",
		mcp.WithDescription("Report how many movies are loaded and embedded, and the vector dimension"),
	)
	mcpServer.AddTool(statsTool, s.handleStats)

	if s.movies != nil {
		getTool := mcp.NewTool("get_movie",
			mcp.WithDescription("Get a movie's title, genres and aggregated tags"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The movie id or its movie:// URI"),
			),
		)
		mcpServer.AddTool(getTool, s.handleGetMovie)
	}
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := request.GetInt("limit", s.defaultLimit)

	results, err := s.searcher.Find(ctx, query, limit)
	if err != nil {
		s.logger.Error("search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type searchResult struct {
		URI     string  `json:"uri"`
		MovieID int64   `json:"movie_id"`
		Title   string  `json:"title"`
		Genres  string  `json:"genres"`
		Score   float64 `json:"score"`
	}

	out := make([]searchResult, len(results))
	for i, r := range results {
		out[i] = searchResult{
			URI:     NewMovieURI(r.MovieID()).String(),
			MovieID: r.MovieID(),
			Title:   r.Title(),
			Genres:  r.Genres(),
			Score:   r.Score(),
		}
	}
	return jsonResult(out)
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.searcher.Stats(ctx)
	if err != nil {
		s.logger.Error("stats failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(stats)
}

func (s *Server) handleGetMovie(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	uri, err := ParseMovieURI(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := s.movies.Find(ctx, repository.WithMovieID(uri.MovieID()), repository.WithLimit(1))
	if err != nil {
		s.logger.Error("failed to get movie", slog.Int64("movie_id", uri.MovieID()), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to get movie: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("movie %d not found", uri.MovieID())), nil
	}

	e := entries[0]
	type movieResult struct {
		URI     string `json:"uri"`
		MovieID int64  `json:"movie_id"`
		Title   string `json:"title"`
		Genres  string `json:"genres"`
		AllTags string `json:"all_tags"`
	}
	return jsonResult(movieResult{
		URI:     uri.String(),
		MovieID: e.MovieID(),
		Title:   e.Title(),
		Genres:  e.Genres(),
		AllTags: e.AllTags(),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
