package mcp

import (
	"fmt"
	"strconv"
	"strings"
)

const movieScheme = "movie://"

// MovieURI identifies a movie in tool output.
type MovieURI struct {
	movieID int64
}

// NewMovieURI creates a MovieURI.
func NewMovieURI(movieID int64) MovieURI {
	return MovieURI{movieID: movieID}
}

// ParseMovieURI accepts "movie://<id>" or a bare numeric id.
func ParseMovieURI(raw string) (MovieURI, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), movieScheme)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return MovieURI{}, fmt.Errorf("invalid movie id %q", raw)
	}
	return MovieURI{movieID: id}, nil
}

// MovieID returns the movie identifier.
func (u MovieURI) MovieID() int64 { return u.movieID }

// String builds the movie:// URI string.
func (u MovieURI) String() string {
	return movieScheme + strconv.FormatInt(u.movieID, 10)
}
