package movie

import "strings"

// Document is a movie joined with the text of all its tags. It is the unit
// the embedding pipeline turns into a vector.
type Document struct {
	movie   Movie
	allTags string
}

// NewDocument creates a Document.
func NewDocument(m Movie, allTags string) Document {
	return Document{movie: m, allTags: strings.TrimSpace(allTags)}
}

// Movie returns the underlying movie.
func (d Document) Movie() Movie { return d.movie }

// MovieID returns the movie identifier.
func (d Document) MovieID() int64 { return d.movie.ID() }

// Title returns the movie title.
func (d Document) Title() string { return d.movie.Title() }

// Genres returns the delimiter-joined genres.
func (d Document) Genres() string { return d.movie.Genres() }

// AllTags returns the aggregated tag text.
func (d Document) AllTags() string { return d.allTags }

// Text returns the blob that gets embedded: title, genres and tags
// separated by single spaces. Genre delimiters become spaces so the model
// sees individual words.
func (d Document) Text() string {
	parts := make([]string, 0, 3)
	if title := strings.TrimSpace(d.movie.Title()); title != "" {
		parts = append(parts, title)
	}
	if genres := d.movie.GenreList(); len(genres) > 0 {
		parts = append(parts, strings.Join(genres, " "))
	}
	if d.allTags != "" {
		parts = append(parts, d.allTags)
	}
	return strings.Join(parts, " ")
}
