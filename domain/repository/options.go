package repository

// Column names shared by the movies, ratings, tags and vector tables.
const (
	ColumnMovieID = "movie_id"
	ColumnUserID  = "user_id"
)

// WithMovieID restricts a lookup to one movie.
func WithMovieID(id int64) Option {
	return WithCondition(ColumnMovieID, id)
}

// WithMovieIDIn restricts a lookup to a set of movies.
func WithMovieIDIn(ids []int64) Option {
	return WithConditionIn(ColumnMovieID, ids)
}

// WithUserID restricts ratings or tags to one user.
func WithUserID(id int64) Option {
	return WithCondition(ColumnUserID, id)
}
