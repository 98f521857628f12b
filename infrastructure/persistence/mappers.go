package persistence

import (
	"time"

	"github.com/helixml/moviesearch/domain/movie"
)

// MovieMapper maps between movie.Movie and MovieModel.
type MovieMapper struct{}

// ToDomain converts a MovieModel to a domain Movie.
func (MovieMapper) ToDomain(e MovieModel) movie.Movie {
	return movie.NewMovie(e.MovieID, e.Title, e.Genres)
}

// ToModel converts a domain Movie to a MovieModel.
func (MovieMapper) ToModel(m movie.Movie) MovieModel {
	return MovieModel{MovieID: m.ID(), Title: m.Title(), Genres: m.Genres()}
}

// RatingMapper maps between movie.Rating and RatingModel.
type RatingMapper struct{}

// ToDomain converts a RatingModel to a domain Rating.
func (RatingMapper) ToDomain(e RatingModel) movie.Rating {
	return movie.NewRating(e.UserID, e.MovieID, e.Rating, fromUnix(e.Timestamp))
}

// ToModel converts a domain Rating to a RatingModel.
func (RatingMapper) ToModel(r movie.Rating) RatingModel {
	return RatingModel{
		UserID:    r.UserID(),
		MovieID:   r.MovieID(),
		Rating:    r.Rating(),
		Timestamp: toUnix(r.Timestamp()),
	}
}

// TagMapper maps between movie.Tag and TagModel.
type TagMapper struct{}

// ToDomain converts a TagModel to a domain Tag.
func (TagMapper) ToDomain(e TagModel) movie.Tag {
	return movie.NewTag(e.UserID, e.MovieID, e.Tag, fromUnix(e.Timestamp))
}

// ToModel converts a domain Tag to a TagModel.
func (TagMapper) ToModel(t movie.Tag) TagModel {
	return TagModel{
		UserID:    t.UserID(),
		MovieID:   t.MovieID(),
		Tag:       t.Text(),
		Timestamp: toUnix(t.Timestamp()),
	}
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(s int64) time.Time {
	if s == 0 {
		return time.Time{}
	}
	return time.Unix(s, 0).UTC()
}
