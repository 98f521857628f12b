package movie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovie_GenreList(t *testing.T) {
	tests := []struct {
		name   string
		genres string
		want   []string
	}{
		{"several", "Adventure|Animation|Children", []string{"Adventure", "Animation", "Children"}},
		{"single", "Drama", []string{"Drama"}},
		{"placeholder", NoGenres, []string{}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMovie(1, "x", tt.genres).GenreList())
		})
	}
}

func TestDocument_Text(t *testing.T) {
	toyStory := NewMovie(1, "Toy Story (1995)", "Animation|Comedy")

	doc := NewDocument(toyStory, " pixar fun ")
	assert.Equal(t, "Toy Story (1995) Animation Comedy pixar fun", doc.Text())
	assert.Equal(t, "pixar fun", doc.AllTags())
	assert.Equal(t, int64(1), doc.MovieID())
	assert.Equal(t, "Animation|Comedy", doc.Genres())
}

func TestDocument_Text_OmitsEmptyParts(t *testing.T) {
	doc := NewDocument(NewMovie(2, "Heat (1995)", NoGenres), "")
	assert.Equal(t, "Heat (1995)", doc.Text())

	assert.Empty(t, NewDocument(NewMovie(3, "  ", ""), "").Text())
}
