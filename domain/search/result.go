package search

// Result is a single ranked movie.
type Result struct {
	movieID int64
	title   string
	genres  string
	score   float64
}

// NewResult creates a new Result.
func NewResult(movieID int64, title, genres string, score float64) Result {
	return Result{
		movieID: movieID,
		title:   title,
		genres:  genres,
		score:   score,
	}
}

// MovieID returns the movie identifier.
func (r Result) MovieID() int64 { return r.movieID }

// Title returns the movie title.
func (r Result) Title() string { return r.title }

// Genres returns the delimiter-joined genres.
func (r Result) Genres() string { return r.genres }

// Score returns the dot-product score against the query vector.
func (r Result) Score() float64 { return r.score }
