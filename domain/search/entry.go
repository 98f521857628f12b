package search

// Entry is one row of the movie vector table: the movie's descriptive
// columns plus its embedding.
type Entry struct {
	movieID int64
	title   string
	genres  string
	allTags string
	vector  Vector
}

// NewEntry creates an Entry.
func NewEntry(movieID int64, title, genres, allTags string, vector Vector) Entry {
	return Entry{
		movieID: movieID,
		title:   title,
		genres:  genres,
		allTags: allTags,
		vector:  vector,
	}
}

// MovieID returns the movie identifier.
func (e Entry) MovieID() int64 { return e.movieID }

// Title returns the movie title.
func (e Entry) Title() string { return e.title }

// Genres returns the delimiter-joined genres.
func (e Entry) Genres() string { return e.genres }

// AllTags returns the aggregated tag text.
func (e Entry) AllTags() string { return e.allTags }

// Vector returns the embedding.
func (e Entry) Vector() Vector { return e.vector }
