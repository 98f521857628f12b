package jsonapi

import (
	"strconv"

	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/domain/search"
)

// Resource types.
const (
	TypeMovie = "movie"
	TypeStats = "stats"
)

// MovieAttributes are the attributes of a ranked movie.
type MovieAttributes struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
	Score  float64  `json:"score"`
}

// StatsAttributes describe the search index.
type StatsAttributes struct {
	Movies    int64 `json:"movies"`
	Embedded  int64 `json:"embedded"`
	Dimension int   `json:"dimension"`
}

// MovieResource converts a ranked result into a resource.
func MovieResource(r search.Result) *Resource {
	return NewResource(TypeMovie, strconv.FormatInt(r.MovieID(), 10), MovieAttributes{
		Title:  r.Title(),
		Genres: movie.NewMovie(r.MovieID(), r.Title(), r.Genres()).GenreList(),
		Score:  r.Score(),
	})
}

// MovieResources converts ranked results, preserving order.
func MovieResources(results []search.Result) []*Resource {
	out := make([]*Resource, len(results))
	for i, r := range results {
		out[i] = MovieResource(r)
	}
	return out
}
