// Package movie holds the MovieLens records the pipeline loads and embeds.
package movie

import (
	"strings"
	"time"
)

// GenreSeparator is the delimiter MovieLens uses between genres.
const GenreSeparator = "|"

// NoGenres is the MovieLens placeholder for a movie without genres.
const NoGenres = "(no genres listed)"

// Movie is a single row of movies.csv.
type Movie struct {
	id     int64
	title  string
	genres string
}

// NewMovie creates a Movie.
func NewMovie(id int64, title, genres string) Movie {
	return Movie{id: id, title: title, genres: genres}
}

// ID returns the MovieLens movie identifier.
func (m Movie) ID() int64 { return m.id }

// Title returns the movie title, including the release year suffix.
func (m Movie) Title() string { return m.title }

// Genres returns the raw delimiter-joined genre list.
func (m Movie) Genres() string { return m.genres }

// GenreList splits the genre list. The no-genres placeholder yields an empty slice.
func (m Movie) GenreList() []string {
	if m.genres == "" || m.genres == NoGenres {
		return []string{}
	}
	return strings.Split(m.genres, GenreSeparator)
}

// Rating is a single row of ratings.csv.
type Rating struct {
	userID    int64
	movieID   int64
	rating    float64
	timestamp time.Time
}

// NewRating creates a Rating.
func NewRating(userID, movieID int64, rating float64, timestamp time.Time) Rating {
	return Rating{userID: userID, movieID: movieID, rating: rating, timestamp: timestamp}
}

// UserID returns the rating user.
func (r Rating) UserID() int64 { return r.userID }

// MovieID returns the rated movie.
func (r Rating) MovieID() int64 { return r.movieID }

// Rating returns the star rating (0.5 to 5.0).
func (r Rating) Rating() float64 { return r.rating }

// Timestamp returns when the rating was made.
func (r Rating) Timestamp() time.Time { return r.timestamp }

// Tag is a single row of tags.csv.
type Tag struct {
	userID    int64
	movieID   int64
	tag       string
	timestamp time.Time
}

// NewTag creates a Tag.
func NewTag(userID, movieID int64, tag string, timestamp time.Time) Tag {
	return Tag{userID: userID, movieID: movieID, tag: tag, timestamp: timestamp}
}

// UserID returns the tagging user.
func (t Tag) UserID() int64 { return t.userID }

// MovieID returns the tagged movie.
func (t Tag) MovieID() int64 { return t.movieID }

// Text returns the free-text tag.
func (t Tag) Text() string { return t.tag }

// Timestamp returns when the tag was applied.
func (t Tag) Timestamp() time.Time { return t.timestamp }
